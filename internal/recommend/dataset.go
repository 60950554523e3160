// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package recommend

import (
	"sort"
	"strconv"
)

// Cohort is an immutable set of user IDs, kept sorted for reproducible
// iteration. The zero value is an empty cohort.
type Cohort struct {
	ids []int
	set map[int]struct{}
}

// NewCohort builds a cohort from ids. Duplicates are dropped.
func NewCohort(ids ...int) Cohort {
	set := make(map[int]struct{}, len(ids))
	sorted := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)
	return Cohort{ids: sorted, set: set}
}

// Len returns the number of members.
func (c Cohort) Len() int {
	return len(c.ids)
}

// Contains reports whether userID is a member.
func (c Cohort) Contains(userID int) bool {
	_, ok := c.set[userID]
	return ok
}

// IDs returns the members in ascending order. The slice is a copy.
func (c Cohort) IDs() []int {
	out := make([]int, len(c.ids))
	copy(out, c.ids)
	return out
}

// Without returns the members that are not in other.
func (c Cohort) Without(other Cohort) Cohort {
	keep := make([]int, 0, len(c.ids))
	for _, id := range c.ids {
		if !other.Contains(id) {
			keep = append(keep, id)
		}
	}
	return NewCohort(keep...)
}

// SelectFans returns the users whose rating of reference is strictly greater
// than threshold.
func SelectFans(ratings []Rating, reference string, threshold float64) Cohort {
	var ids []int
	for i := range ratings {
		if ratings[i].ItemID == reference && ratings[i].Value > threshold {
			ids = append(ids, ratings[i].UserID)
		}
	}
	return NewCohort(ids...)
}

// FoldAssignment maps cohort members to fold labels in [0, K).
type FoldAssignment struct {
	K      int         `json:"k"`
	Seed   int64       `json:"seed"`
	Labels map[int]int `json:"labels"`
}

// Members returns the users assigned to fold, ascending.
func (f *FoldAssignment) Members(fold int) []int {
	var ids []int
	for user, label := range f.Labels {
		if label == fold {
			ids = append(ids, user)
		}
	}
	sort.Ints(ids)
	return ids
}

// Sizes returns the member count of every fold.
func (f *FoldAssignment) Sizes() []int {
	sizes := make([]int, f.K)
	for _, label := range f.Labels {
		if label >= 0 && label < f.K {
			sizes[label]++
		}
	}
	return sizes
}

// Validate checks the guarantees the preparation stage owes the core:
// ratings in range, one rating per (user, item), unique catalog IDs and
// titles, and every rated item present in the catalog.
func (d *Dataset) Validate() error {
	ids := make(map[string]struct{}, len(d.Catalog))
	titles := make(map[string]string, len(d.Catalog))
	for i := range d.Catalog {
		b := d.Catalog[i]
		if b.ItemID == "" {
			return &DataContractError{Field: "catalog.item_id", Value: b.Title, Reason: "empty item id"}
		}
		if _, dup := ids[b.ItemID]; dup {
			return &DataContractError{Field: "catalog.item_id", Value: b.ItemID, Reason: "duplicate item id"}
		}
		ids[b.ItemID] = struct{}{}
		if prev, dup := titles[b.Title]; dup {
			return &DataContractError{Field: "catalog.title", Value: b.Title, Reason: "title shared by items " + prev + " and " + b.ItemID}
		}
		titles[b.Title] = b.ItemID
	}

	type pair struct {
		user int
		item string
	}
	seen := make(map[pair]struct{}, len(d.Ratings))
	for i := range d.Ratings {
		r := d.Ratings[i]
		if !(r.Value >= MinRating && r.Value <= MaxRating) {
			return &DataContractError{Field: "rating.value", Value: strconv.FormatFloat(r.Value, 'f', -1, 64), Reason: "outside [0, 10]"}
		}
		p := pair{r.UserID, r.ItemID}
		if _, dup := seen[p]; dup {
			return &DataContractError{Field: "rating", Value: strconv.Itoa(r.UserID) + "/" + r.ItemID, Reason: "duplicate (user, item) pair"}
		}
		seen[p] = struct{}{}
		if _, ok := ids[r.ItemID]; !ok {
			return &DataContractError{Field: "rating.item_id", Value: r.ItemID, Reason: "not in catalog"}
		}
	}
	return nil
}

// WithoutUsers returns a dataset that drops every rating made by a member of
// users. The catalog is shared.
func (d *Dataset) WithoutUsers(users Cohort) *Dataset {
	kept := make([]Rating, 0, len(d.Ratings))
	for i := range d.Ratings {
		if !users.Contains(d.Ratings[i].UserID) {
			kept = append(kept, d.Ratings[i])
		}
	}
	return &Dataset{Ratings: kept, Catalog: d.Catalog}
}

// UserCount returns the number of distinct raters.
func (d *Dataset) UserCount() int {
	users := make(map[int]struct{})
	for i := range d.Ratings {
		users[d.Ratings[i].UserID] = struct{}{}
	}
	return len(users)
}
