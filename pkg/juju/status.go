/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package juju

import (
	"iter"
	"maps"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Applications returns the applications in the status keyed by name.
// The returned map is a copy; the applications themselves are shared.
func (s *Status) Applications() map[string]*Application {
	return maps.Clone(s.applications)
}

// Application returns the named application, if present.
func (s *Status) Application(name string) (*Application, bool) {
	app, ok := s.applications[name]
	return app, ok
}

// ApplicationNames returns the application names in ascending order.
func (s *Status) ApplicationNames() []string {
	return sets.List(sets.KeySet(s.applications))
}

// Units walks every unit in the status. Applications are visited in
// ascending name order, principal units in ascending name order within
// their application, and each principal's subordinates in ascending name
// order immediately after it. Ranging over the sequence again walks the
// status again from the start.
func (s *Status) Units() iter.Seq2[string, *Unit] {
	return func(yield func(string, *Unit) bool) {
		for _, appName := range s.ApplicationNames() {
			app := s.applications[appName]
			for _, unitName := range sets.List(sets.KeySet(app.Units)) {
				unit := app.Units[unitName]
				if !yield(unitName, unit) {
					return
				}
				for _, subName := range sets.List(sets.KeySet(unit.Subordinates)) {
					if !yield(subName, unit.Subordinates[subName]) {
						return
					}
				}
			}
		}
	}
}

// UnitsOf returns the units, principal or subordinate, whose name carries
// the exact application prefix, in Units order.
func (s *Status) UnitsOf(application string) []*Unit {
	prefix := application + "/"
	var units []*Unit
	for name, unit := range s.Units() {
		if strings.HasPrefix(name, prefix) {
			units = append(units, unit)
		}
	}
	return units
}

// UnitNamesOf returns the names of UnitsOf(application).
func (s *Status) UnitNamesOf(application string) []string {
	units := s.UnitsOf(application)
	unitNames := make([]string, 0, len(units))
	for _, u := range units {
		unitNames = append(unitNames, u.Name)
	}
	return unitNames
}
