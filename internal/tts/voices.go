package tts

// Candidate is a voice offered for side-by-side comparison.
type Candidate struct {
	Label string
	Name  string
}

// SampleText is read by every candidate voice.
const SampleText = "Week 1, Day 1. Today's reading is Genesis 1-2; Psalm 19; and Mark 1."

// Candidates lists the HD voices worth auditioning for the intro.
var Candidates = []Candidate{
	{Label: "chirp3-achernar", Name: "en-US-Chirp3-HD-Achernar"},
	{Label: "chirp3-alnilam", Name: "en-US-Chirp3-HD-Alnilam"},
	{Label: "chirp3-charon", Name: "en-US-Chirp3-HD-Charon"},
	{Label: "chirp3-gacrux", Name: "en-US-Chirp3-HD-Gacrux"},
	{Label: "chirp3-rasalgethi", Name: "en-US-Chirp3-HD-Rasalgethi"},
	{Label: "chirp3-schedar", Name: "en-US-Chirp3-HD-Schedar"},
	{Label: "chirp3-vindemiatrix", Name: "en-US-Chirp3-HD-Vindemiatrix"},
}
