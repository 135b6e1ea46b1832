package entity

import "errors"

var ErrEmptySeedEntry = errors.New("seed entry has neither url nor searchUrl")

type SeedKind int

const (
	SeedDirect SeedKind = iota + 1
	SeedSearch
)

func (k SeedKind) String() string {
	switch k {
	case SeedDirect:
		return "direct"
	case SeedSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Seed is a single reference to harvest from: a profile page or a paginated search listing.
type Seed struct {
	Kind SeedKind
	URL  string
}

func DirectTarget(url string) Seed { return Seed{Kind: SeedDirect, URL: url} }

func SearchTarget(url string) Seed { return Seed{Kind: SeedSearch, URL: url} }

// SeedEntry is one row supplied by an ingester. Both fields may be set, in which
// case the entry stands for two independent seeds.
type SeedEntry struct {
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	SearchURL string `json:"searchUrl,omitempty" yaml:"searchUrl,omitempty"`
}

func (e SeedEntry) Validate() error {
	if e.URL == "" && e.SearchURL == "" {
		return ErrEmptySeedEntry
	}
	return nil
}

// Seeds expands the entry into its direct and search seeds, direct first.
func (e SeedEntry) Seeds() []Seed {
	seeds := make([]Seed, 0, 2)
	if e.URL != "" {
		seeds = append(seeds, DirectTarget(e.URL))
	}
	if e.SearchURL != "" {
		seeds = append(seeds, SearchTarget(e.SearchURL))
	}
	return seeds
}

// ExpandEntries flattens entries into seeds and reports how many entries were empty.
func ExpandEntries(entries []SeedEntry) (seeds []Seed, skipped int) {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		seeds = append(seeds, e.Seeds()...)
	}
	return seeds, skipped
}
