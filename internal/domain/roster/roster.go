// Package roster reconciles subject ids across data sources before scoring:
// duplicates between sites or computers, practice subjects absent from the
// master list, and master subjects with no data.
package roster

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var sidePrefix = regexp.MustCompile(`^.*(?:Left|Right)-`)

// SubjectFromFilename derives a subject id from a raw per-subject export
// name such as "AXCPT-Left-19001-1.txt": the side prefix and extension are
// removed and the twin suffix -1/-2 becomes A/B, giving "19001A".
func SubjectFromFilename(name string) string {
	id := sidePrefix.ReplaceAllString(filepath.Base(name), "")
	id = strings.TrimSuffix(id, filepath.Ext(id))
	switch {
	case strings.HasSuffix(id, "-1"):
		id = strings.TrimSuffix(id, "-1") + "A"
	case strings.HasSuffix(id, "-2"):
		id = strings.TrimSuffix(id, "-2") + "B"
	}
	return id
}

// Source is a named set of subject ids, e.g. one testing computer.
type Source struct {
	Name string
	IDs  []string
}

// Report is the outcome of Reconcile. All id lists are sorted.
type Report struct {
	// Duplicates maps an id to the sources it appears in, for ids found in
	// more than one source.
	Duplicates map[string][]string
	// NotInMaster lists ids with data that the master list does not know;
	// these are practice or mistyped subjects.
	NotInMaster []string
	// Missing lists master ids with no data in any source.
	Missing []string
}

// Clean reports whether no discrepancy was found.
func (r Report) Clean() bool {
	return len(r.Duplicates) == 0 && len(r.NotInMaster) == 0 && len(r.Missing) == 0
}

// Reconcile compares sources against the master list.
func Reconcile(master []string, sources []Source) Report {
	known := newSet(master)
	found := make(map[string][]string)
	for _, src := range sources {
		for id := range newSet(src.IDs) {
			found[id] = append(found[id], src.Name)
		}
	}

	rep := Report{Duplicates: make(map[string][]string)}
	for id, names := range found {
		if len(names) > 1 {
			sort.Strings(names)
			rep.Duplicates[id] = names
		}
		if !known.has(id) {
			rep.NotInMaster = append(rep.NotInMaster, id)
		}
	}
	for id := range known {
		if _, ok := found[id]; !ok {
			rep.Missing = append(rep.Missing, id)
		}
	}
	sort.Strings(rep.NotInMaster)
	sort.Strings(rep.Missing)
	return rep
}

// SymmetricDiff returns the ids present in exactly one of a and b, sorted.
// It is used to check that file names and merged exports agree.
func SymmetricDiff(a, b []string) []string {
	sa, sb := newSet(a), newSet(b)
	var out []string
	for id := range sa {
		if !sb.has(id) {
			out = append(out, id)
		}
	}
	for id := range sb {
		if !sa.has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

type set map[string]struct{}

func newSet(ids []string) set {
	s := make(set, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s set) has(id string) bool {
	_, ok := s[id]
	return ok
}
