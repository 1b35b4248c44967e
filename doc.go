// Package molecule navigates buffers of the Molecule serialization format
// without copying them.
//
// A caller holds a Segment (initially the whole input buffer) and knows,
// from its schema, which layout the segment encodes. Cut validates the one
// navigation step requested and returns the child segment plus a
// kind-dependent attribute:
//
//	Option           0 for none, 1 for some
//	Union            the variant type id
//	Array, Struct    always 0
//	FixVec, DynVec,
//	Table            the encoded item or field count
//
// Failures are reported through an 8-bit Status: the high nibble names the
// layout that detected the problem and the low nibble the reason. Nothing
// in this package allocates, retains state, or reads past the parent
// segment, so segments of one buffer may be cut from any number of
// goroutines as long as the buffer itself is not mutated.
package molecule
