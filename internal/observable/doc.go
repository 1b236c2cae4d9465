// Package observable provides synchronous property change notification for
// mutable configuration objects.
//
// An Entity carries a list of change handlers. Mutations performed through
// SetField compare the current and new values, assign only on change, and
// notify every handler with the name of the property that changed. Derived
// (computed) properties re-publish through RaiseChanged without a backing
// field assignment.
//
// # Usage Example
//
//	type Profile struct {
//	    observable.Entity
//	    host string
//	}
//
//	func (p *Profile) SetHost(host string) bool {
//	    return observable.SetField(&p.Entity, &p.host, host, "Host")
//	}
//
//	profile.OnChange(func(property string) {
//	    fmt.Println("changed:", property)
//	})
//
// # Threading
//
// There are no threading primitives here. Handlers run inline on the
// mutating goroutine, before the setter returns. A handler must not mutate
// the same field it is observing, or notification recurses.
package observable
