package eventgraph

import (
	"strings"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

// Sentence pairs a parsed sentence with its serial position in the document.
type Sentence struct {
	SID  string `json:"sid"`
	SSID int    `json:"ssid"`

	Surf  string `json:"surf"`
	Mrphs string `json:"mrphs"`
	Reps  string `json:"reps"`

	analysis *knp.Sentence
}

func newSentence(ssid int, analysis *knp.Sentence) *Sentence {
	s := &Sentence{SID: analysis.SID, SSID: ssid, analysis: analysis}
	morphemes := analysis.Morphemes()
	s.Mrphs = strings.Join(morphemeStrings(morphemes, modeMrphs), " ")
	s.Surf = strings.ReplaceAll(s.Mrphs, " ", "")
	s.Reps = strings.Join(morphemeStrings(morphemes, modeReps), " ")
	return s
}
