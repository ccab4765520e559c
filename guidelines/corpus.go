package guidelines

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one curated exercise guideline before indexing.
type Document struct {
	Name              string   `yaml:"name" validate:"required"`
	Intensity         string   `yaml:"intensity"`
	Description       string   `yaml:"description" validate:"required"`
	Contraindications []string `yaml:"contraindications"`
	Source            string   `yaml:"source"`
}

type corpusFile struct {
	Exercises []Document `yaml:"exercises"`
}

// LoadCorpus reads guideline documents from a YAML corpus file.
func LoadCorpus(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCorpus(f)
}

// ReadCorpus decodes guideline documents from YAML.
func ReadCorpus(r io.Reader) ([]Document, error) {
	var file corpusFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, err
	}
	for idx, doc := range file.Exercises {
		if strings.TrimSpace(doc.Name) == "" {
			return nil, fmt.Errorf("guidelines: corpus entry %d missing name", idx)
		}
		if strings.TrimSpace(doc.Description) == "" {
			return nil, fmt.Errorf("guidelines: corpus entry %q missing description", doc.Name)
		}
	}
	return file.Exercises, nil
}

// text renders the document into the prose that gets chunked and embedded.
func (d Document) text() string {
	var builder strings.Builder
	builder.WriteString(d.Name)
	builder.WriteString(". ")
	builder.WriteString(strings.TrimSpace(d.Description))
	if d.Intensity != "" {
		builder.WriteString(" Intensity: ")
		builder.WriteString(d.Intensity)
		builder.WriteString(".")
	}
	if len(d.Contraindications) > 0 {
		builder.WriteString(" Not recommended for: ")
		builder.WriteString(strings.Join(d.Contraindications, ", "))
		builder.WriteString(".")
	}
	return builder.String()
}
