// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// package must turns errors into panics for command code that exits on the first error.
//
// The osg-configure main function recovers the panic, prints it and exits with status 1.
package must

// Must panics with err if it is not nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 calls Must(err), then returns v.
func Must1[T any](v T, err error) T { Must(err); return v }
