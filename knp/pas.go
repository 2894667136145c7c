package knp

import "strings"

// ArgumentFlag classifies how a case slot was filled by the parser.
type ArgumentFlag string

const (
	FlagDirect       ArgumentFlag = "C" // direct (overt) case marking
	FlagNormal       ArgumentFlag = "N" // normal dependency
	FlagOmitted      ArgumentFlag = "O" // zero anaphora
	FlagDemonstr     ArgumentFlag = "D" // demonstrative
	FlagExophora     ArgumentFlag = "E" // exophora (extra-textual referent)
	FlagUnresolved   ArgumentFlag = "U" // unfilled slot
	FlagUndetermined ArgumentFlag = "-"
)

// IsOmission reports whether the argument was recovered by anaphora or
// exophora resolution rather than an overt dependency.
func (f ArgumentFlag) IsOmission() bool {
	return f == FlagOmitted || f == FlagExophora
}

// RawArgument is one case-slot filler from a predicate-argument-structure
// annotation.
type RawArgument struct {
	Case             string
	Flag             ArgumentFlag
	Surface          string
	SentenceDistance int // sentences back from the predicate
	TagID            int // tag id within the target sentence
	EntityID         int
}

// PAS is the predicate-argument structure of one predicate tag. Cases keeps
// the parser's emission order, since Arguments is an unordered map.
type PAS struct {
	CaseFrameID string
	Cases       []string
	Arguments   map[string][]*RawArgument
}

// parsePAS parses a 述語項構造 (or the older 格解析結果) feature value:
//
//	走る/はしる:動1:ガ/C/彼/0/0/1;ヲ/U/-/-/-/-
//
// Each entry is case/flag/surface/sdist/tid/eid. Unfilled slots (flag U or
// surface "-") are dropped.
func parsePAS(value string) *PAS {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 3 {
		return nil
	}
	pas := &PAS{
		CaseFrameID: parts[0] + ":" + parts[1],
		Arguments:   make(map[string][]*RawArgument),
	}
	for _, entry := range strings.Split(parts[2], ";") {
		fields := strings.Split(entry, "/")
		if len(fields) != 6 {
			continue
		}
		flag := ArgumentFlag(fields[1])
		if flag == FlagUnresolved || flag == FlagUndetermined || fields[2] == "-" {
			continue
		}
		sdist, ok1 := atoi(fields[3])
		tid, ok2 := atoi(fields[4])
		eid, ok3 := atoi(fields[5])
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		arg := &RawArgument{
			Case:             fields[0],
			Flag:             flag,
			Surface:          fields[2],
			SentenceDistance: sdist,
			TagID:            tid,
			EntityID:         eid,
		}
		if _, seen := pas.Arguments[arg.Case]; !seen {
			pas.Cases = append(pas.Cases, arg.Case)
		}
		pas.Arguments[arg.Case] = append(pas.Arguments[arg.Case], arg)
	}
	return pas
}

// tagPAS extracts the PAS annotation of a tag, if any.
func tagPAS(fs FeatureSet) *PAS {
	if v := fs.Get("述語項構造"); v != "" {
		return parsePAS(v)
	}
	if v := fs.Get("格解析結果"); v != "" {
		return parsePAS(v)
	}
	return nil
}
