package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// SupportedMajor is the catalog file format major version this build reads.
const SupportedMajor = "v1"

const schemaURL = "schema://adaptiq/catalog.json"

//go:embed schema.json
var schemaJSON []byte

//go:embed seed/*.yaml
var seedFS embed.FS

// ErrUnsupportedVersion is returned for catalog files of another major
// format version.
var ErrUnsupportedVersion = errors.New("unsupported catalog version")

// File is the on-disk shape of a catalog file.
type File struct {
	Version     string         `yaml:"version"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Questions   []fileQuestion `yaml:"questions"`
}

type fileQuestion struct {
	ID          string    `yaml:"id"`
	Difficulty  string    `yaml:"difficulty"`
	Type        string    `yaml:"type"`
	SkillArea   string    `yaml:"skill_area"`
	Content     string    `yaml:"content"`
	Choices     []string  `yaml:"choices"`
	Answer      string    `yaml:"answer"`
	TimeLimit   yaml.Node `yaml:"time_limit"`
	Hints       []string  `yaml:"hints"`
	Explanation string    `yaml:"explanation"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func fileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Parse decodes and validates one catalog file. source names the file in
// error messages. Cross-file checks such as ID uniqueness are left to New.
func Parse(data []byte, source string) (*File, []adaptive.Question, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%s: parse yaml: %w", source, err)
	}
	if err := validateShape(raw); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("%s: decode: %w", source, err)
	}
	if err := checkVersion(f.Version); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", source, err)
	}

	questions := make([]adaptive.Question, 0, len(f.Questions))
	var errs []error
	for _, fq := range f.Questions {
		q, err := fq.toQuestion()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: question %q: %w", source, fq.ID, err))
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return &f, questions, nil
}

// validateShape checks the decoded YAML tree against the embedded JSON
// schema. The tree is round-tripped through JSON so that YAML scalars
// take the types the validator expects.
func validateShape(raw any) error {
	sch, err := fileSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalize yaml: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("normalize yaml: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (want %s.x)", ErrUnsupportedVersion, v, SupportedMajor)
	}
	return nil
}

func (fq fileQuestion) toQuestion() (adaptive.Question, error) {
	d, err := adaptive.ParseDifficulty(fq.Difficulty)
	if err != nil {
		return adaptive.Question{}, err
	}
	typ, err := adaptive.ParseQuestionType(fq.Type)
	if err != nil {
		return adaptive.Question{}, err
	}
	limit, err := parseTimeLimit(fq.TimeLimit)
	if err != nil {
		return adaptive.Question{}, err
	}
	return adaptive.Question{
		ID:              fq.ID,
		Difficulty:      d,
		Type:            typ,
		Content:         strings.TrimSpace(fq.Content),
		Choices:         fq.Choices,
		ReferenceAnswer: strings.TrimSpace(fq.Answer),
		SkillArea:       strings.TrimSpace(fq.SkillArea),
		TimeLimit:       limit,
		Hints:           fq.Hints,
		Explanation:     strings.TrimSpace(fq.Explanation),
	}, nil
}

// parseTimeLimit accepts either a Go duration string ("90s", "2m") or
// an integer number of seconds. An absent value means no limit.
func parseTimeLimit(n yaml.Node) (time.Duration, error) {
	if n.Kind == 0 || n.Value == "" {
		return 0, nil
	}
	if n.ShortTag() == "!!int" {
		var secs int
		if err := n.Decode(&secs); err != nil {
			return 0, fmt.Errorf("time_limit: %w", err)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(n.Value)
	if err != nil {
		return 0, fmt.Errorf("time_limit: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("time_limit must be positive")
	}
	return d, nil
}

// LoadFile reads a single catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	_, questions, err := Parse(data, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return New(questions)
}

// Load reads path as a catalog file, or as a directory of catalog files
// when it names a directory.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if info.IsDir() {
		return LoadFS(os.DirFS(path), ".")
	}
	return LoadFile(path)
}

// LoadDir reads every *.yaml and *.yml file under dir.
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads every *.yaml and *.yml file under root in fsys, in
// lexical path order. Problems from all files are reported together.
func LoadFS(fsys fs.FS, root string) (*Catalog, error) {
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk catalog: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files in %s: %w", root, ErrEmpty)
	}
	sort.Strings(paths)

	var (
		all  []adaptive.Question
		errs []error
	)
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", p, err))
			continue
		}
		_, qs, err := Parse(data, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, qs...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return New(all)
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadFS(seedFS, "seed")
})

// Default returns the built-in catalog. It panics if the embedded seed
// files are invalid, which the package tests rule out.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in catalog: %v", err))
	}
	return c
}
