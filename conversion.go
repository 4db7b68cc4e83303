// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import "fmt"

// AllSubresources selects every subresource of a resource at once.
const AllSubresources = -1

// StateConversion is a transition a StateConverter found necessary.
// Subresource is an index or AllSubresources.
type StateConversion struct {
	Subresource int
	From        State
	To          State
}

// IsAll reports whether the conversion covers the whole resource.
func (c StateConversion) IsAll() bool { return c.Subresource == AllSubresources }

func (c StateConversion) String() string {
	return fmt.Sprintf("[%s] %s -> %s", subresourceString(c.Subresource), c.From, c.To)
}

func subresourceString(i int) string {
	if i == AllSubresources {
		return "ALL"
	}
	return fmt.Sprintf("%d", i)
}
