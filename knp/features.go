package knp

import "strings"

// Feature is a single annotation from a KNP feature string, split at the
// first colon. A feature without a value (e.g. <節-主辞>) has an empty Value.
type Feature struct {
	Key   string
	Value string
}

// FeatureSet holds the ordered annotations of one tag, bunsetsu, or morpheme
// feature string such as "<文末><時制-過去><節-主辞><節-区切:連体修飾>".
type FeatureSet struct {
	features []Feature
	raw      string
}

// ParseFeatures parses a raw feature string into a FeatureSet.
func ParseFeatures(raw string) FeatureSet {
	fs := FeatureSet{raw: raw}
	rest := raw
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		close := strings.IndexByte(rest[open:], '>')
		if close < 0 {
			break
		}
		body := rest[open+1 : open+close]
		rest = rest[open+close+1:]
		if body == "" {
			continue
		}
		key, value := body, ""
		if i := strings.IndexByte(body, ':'); i >= 0 {
			key, value = body[:i], body[i+1:]
		}
		fs.features = append(fs.features, Feature{Key: key, Value: value})
	}
	return fs
}

// Raw returns the original feature string.
func (fs FeatureSet) Raw() string { return fs.raw }

// Has reports whether a feature with the given key exists.
func (fs FeatureSet) Has(key string) bool {
	for _, f := range fs.features {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Get returns the value of the first feature with the given key.
func (fs FeatureSet) Get(key string) string {
	for _, f := range fs.features {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// GetPrefix returns the remainder of the first feature whose body starts
// with prefix followed by a separator ('-' or ':'). It covers annotations
// that historically appear in both spellings, e.g. <時制-過去> and <時制:過去>.
func (fs FeatureSet) GetPrefix(prefix string) (string, bool) {
	for _, f := range fs.features {
		body := f.Key
		if f.Value != "" {
			body = f.Key + ":" + f.Value
		}
		if len(body) > len(prefix) && strings.HasPrefix(body, prefix) {
			if sep := body[len(prefix)]; sep == '-' || sep == ':' {
				return body[len(prefix)+1:], true
			}
		}
	}
	return "", false
}

// ScanPrefix returns the remainders of every feature whose body starts with
// prefix followed by a separator, in order of appearance.
func (fs FeatureSet) ScanPrefix(prefix string) []string {
	var out []string
	for _, f := range fs.features {
		body := f.Key
		if f.Value != "" {
			body = f.Key + ":" + f.Value
		}
		if len(body) > len(prefix) && strings.HasPrefix(body, prefix) {
			if sep := body[len(prefix)]; sep == '-' || sep == ':' || sep == ';' {
				out = append(out, body[len(prefix)+1:])
			}
		}
	}
	return out
}
