package policy

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSrc string

// Exclusion selects which participants are withheld from a candidate search
// because of how they responded to the searcher.
type Exclusion string

const (
	// ExcludeDecliners withholds anyone who declined the searcher.
	ExcludeDecliners Exclusion = "declined"
	// ExcludeNone withholds nobody on the basis of their response.
	ExcludeNone Exclusion = "none"
)

// Policy is the set of deployment-dependent matchmaking rules.
type Policy struct {
	RequireProfileImage        bool      `json:"require_profile_image"`
	Exclusion                  Exclusion `json:"exclusion"`
	PreferAccepted             bool      `json:"prefer_accepted"`
	RequireQuiescentCandidates bool      `json:"require_quiescent_candidates"`
}

// Default returns the policy used when no policy file is configured.
func Default() Policy {
	return Policy{
		RequireProfileImage:        true,
		Exclusion:                  ExcludeDecliners,
		PreferAccepted:             true,
		RequireQuiescentCandidates: false,
	}
}

// Validate reports whether every field holds a known value.
func (p Policy) Validate() error {
	switch p.Exclusion {
	case ExcludeDecliners, ExcludeNone:
		return nil
	default:
		return fmt.Errorf("unknown exclusion %q", p.Exclusion)
	}
}

// Load reads a CUE policy file.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return Parse(data, path)
}

// Parse compiles CUE source and checks it against the policy schema.
// Fields left out of src take their schema defaults.
func Parse(src []byte, filename string) (Policy, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Policy{}, fmt.Errorf("compile policy schema: %w", err)
	}

	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Policy{}, fmt.Errorf("compile policy: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Policy")).Unify(value)
	if err := unified.Validate(); err != nil {
		return Policy{}, fmt.Errorf("validate policy: %w", err)
	}

	var p Policy
	if err := unified.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
