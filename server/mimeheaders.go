package server

// headerEntry is one name/value pair as parsed — both are ByteChunk views
// into the owning input buffer, never copied.
type headerEntry struct {
	name  ByteChunk
	value ByteChunk
}

// MimeHeaders is an ordered multimap of header name/value ByteChunk views.
// Names are expected to already be folded to lower-case ASCII by the parser
// before being added; lookups are case-insensitive against that invariant.
// Duplicate keys preserve insertion order, and Get always returns the first
// insertion-order match, matching spec.md §8 invariant 6.
type MimeHeaders struct {
	entries []headerEntry
}

// Add appends a name/value pair, preserving insertion order even for
// duplicate names.
func (mh *MimeHeaders) Add(name, value ByteChunk) {
	mh.entries = append(mh.entries, headerEntry{name: name, value: value})
}

// AddString is a convenience for callers building headers programmatically
// (e.g. the output side, or application code) rather than parsing them.
func (mh *MimeHeaders) AddString(name, value string) {
	var n, v ByteChunk
	n.SetView([]byte(name), 0, len(name))
	v.SetView([]byte(value), 0, len(value))
	mh.Add(n, v)
}

// Get returns the first value stored under name (case-insensitive), and
// whether any such header exists.
func (mh *MimeHeaders) Get(name string) (string, bool) {
	nb := []byte(name)
	for i := range mh.entries {
		if mh.entries[i].name.EqualsIgnoreCaseASCII(nb) {
			return mh.entries[i].value.String(), true
		}
	}
	return "", false
}

// Values returns every value stored under name, in insertion order.
func (mh *MimeHeaders) Values(name string) []string {
	nb := []byte(name)
	var out []string
	for i := range mh.entries {
		if mh.entries[i].name.EqualsIgnoreCaseASCII(nb) {
			out = append(out, mh.entries[i].value.String())
		}
	}
	return out
}

// Set replaces every existing value for name with a single new value,
// appending if name was not present.
func (mh *MimeHeaders) Set(name, value string) {
	mh.Remove(name)
	mh.AddString(name, value)
}

// Remove deletes every header stored under name.
func (mh *MimeHeaders) Remove(name string) {
	nb := []byte(name)
	kept := mh.entries[:0]
	for i := range mh.entries {
		if !mh.entries[i].name.EqualsIgnoreCaseASCII(nb) {
			kept = append(kept, mh.entries[i])
		}
	}
	mh.entries = kept
}

// Count returns the number of name/value pairs stored, including duplicates.
func (mh *MimeHeaders) Count() int { return len(mh.entries) }

// Names returns the distinct header names, in first-occurrence order.
func (mh *MimeHeaders) Names() []string {
	var out []string
	seen := make(map[string]bool, len(mh.entries))
	for i := range mh.entries {
		n := mh.entries[i].name.String()
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Recycle drops all entries so the map can be reused for the next request
// without retaining references into the old parse buffer.
func (mh *MimeHeaders) Recycle() {
	mh.entries = mh.entries[:0]
}
