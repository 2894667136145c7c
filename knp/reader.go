package knp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadAll reads KNP lattice output until EOF, splitting sentences at EOS
// lines. Invalid UTF-8 is replaced rather than rejected, since real-world
// corpora are noisy.
func ReadAll(r io.Reader) ([]*Sentence, error) {
	var sentences []*Sentence
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		if strings.TrimSpace(line) == "EOS" {
			sentence, err := ParseSentence(lines)
			if err != nil {
				return nil, err
			}
			sentences = append(sentences, sentence)
			lines = lines[:0]
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parser output: %w", err)
	}
	return sentences, nil
}

// ReadFile reads a file of KNP results.
func ReadFile(path string) ([]*Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f)
}

// ParseSentence parses the lines of a single KNP analysis (without the
// trailing EOS).
func ParseSentence(lines []string) (*Sentence, error) {
	s := &Sentence{}
	var curBunsetsu *Bunsetsu
	var curTag *Tag
	for _, line := range lines {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "# "):
			s.Comment = strings.TrimPrefix(line, "# ")
			for _, field := range strings.Fields(s.Comment) {
				if strings.HasPrefix(field, "S-ID:") {
					s.SID = strings.TrimPrefix(field, "S-ID:")
				}
			}
		case strings.HasPrefix(line, "* "):
			parentID, depType, features, err := parseDepLine(line[2:])
			if err != nil {
				return nil, fmt.Errorf("bunsetsu line %q: %w", line, err)
			}
			curBunsetsu = &Bunsetsu{
				ID:       len(s.Bunsetsu),
				ParentID: parentID,
				DepType:  depType,
				Features: features,
			}
			s.Bunsetsu = append(s.Bunsetsu, curBunsetsu)
		case strings.HasPrefix(line, "+ "):
			parentID, depType, features, err := parseDepLine(line[2:])
			if err != nil {
				return nil, fmt.Errorf("tag line %q: %w", line, err)
			}
			curTag = &Tag{
				ID:       len(s.Tags),
				ParentID: parentID,
				DepType:  depType,
				Features: features,
				PAS:      tagPAS(features),
			}
			s.Tags = append(s.Tags, curTag)
			if curBunsetsu != nil {
				curBunsetsu.Tags = append(curBunsetsu.Tags, curTag)
			}
		default:
			m, err := parseMorpheme(line)
			if err != nil {
				return nil, err
			}
			if curTag == nil {
				return nil, fmt.Errorf("morpheme before any tag line: %q", line)
			}
			curTag.Morphemes = append(curTag.Morphemes, m)
		}
	}
	s.link()
	return s, nil
}

// parseDepLine parses the remainder of a "*" or "+" line: a parent id with
// a dependency-type suffix, then the feature string ("-1D <文末>...").
func parseDepLine(rest string) (parentID int, depType string, features FeatureSet, err error) {
	dep, featureStr, _ := strings.Cut(rest, " ")
	if len(dep) < 2 {
		return 0, "", FeatureSet{}, fmt.Errorf("malformed dependency %q", dep)
	}
	depType = dep[len(dep)-1:]
	id, ok := atoi(dep[:len(dep)-1])
	if !ok {
		return 0, "", FeatureSet{}, fmt.Errorf("malformed parent id %q", dep)
	}
	return id, depType, ParseFeatures(featureStr), nil
}
