// Package catalog owns the set of supported platforms. The durable table is
// accessed through a go-repository-bun repository while reads are served from
// an immutable in-memory snapshot that is replaced wholesale after every
// successful mutation.
package catalog
