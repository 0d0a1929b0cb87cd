package invindex

// Properties is read-only diagnostic metadata about an opened index,
// supplemented from original_source's Properties.hpp — not part of the
// request hot path, useful for an admin/health surface.
type Properties struct {
	KeyCount   int
	ValueCount int // total entries across all keys
	TotalBytes uint64
}

// Properties reports diagnostics for a postlist index.
func (p *PostlistIndex) Properties() Properties {
	total := 0
	for _, k := range p.blocks.Keys() {
		if n, ok := p.Len(k); ok {
			total += n
		}
	}
	return Properties{
		KeyCount:   p.blocks.KeyCount(),
		ValueCount: total,
		TotalBytes: p.blocks.TotalPayloadBytes(),
	}
}

// Properties reports diagnostics for a postlist-meta index.
func (m *PostlistMetaIndex) Properties() Properties {
	total := 0
	for _, k := range m.blocks.Keys() {
		if cps, ok := m.Checkpoints(k); ok {
			total += len(cps)
		}
	}
	return Properties{
		KeyCount:   m.blocks.KeyCount(),
		ValueCount: total,
		TotalBytes: m.blocks.TotalPayloadBytes(),
	}
}
