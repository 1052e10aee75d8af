package store

// prefixBufferedContainer wraps a Container and keeps the first N bytes in
// memory, serving reads and writes inside that prefix without a round trip
// to the wrapped container's Read path. Writes still delegate to the
// wrapped container unconditionally, so the buffer is always a cache, never
// the source of truth.
type prefixBufferedContainer struct {
	wrapped Container
	buf     []byte
	size    int
}

// NewPrefixBufferedContainer wraps container, priming an in-memory buffer
// with the first min(size, container.Len()) bytes.
func NewPrefixBufferedContainer(container Container, size int) (Container, error) {
	length, err := container.Len()
	if err != nil {
		return nil, err
	}

	n := int64(size)
	if length < n {
		n = length
	}

	buf, err := container.Read(0, int(n))
	if err != nil {
		return nil, err
	}

	return &prefixBufferedContainer{
		wrapped: container,
		buf:     buf,
		size:    size,
	}, nil
}

func (p *prefixBufferedContainer) Read(off int64, length int) ([]byte, error) {
	if off < 0 || length == 0 {
		return p.wrapped.Read(off, length)
	}

	offset, ok := clampInt(off)
	if !ok || offset >= len(p.buf) {
		return p.wrapped.Read(off, length)
	}

	end := offset + length

	// Entirely inside the buffer.
	if end <= len(p.buf) {
		out := make([]byte, length)
		copy(out, p.buf[offset:end])
		return out, nil
	}

	// Spans the buffer boundary: concatenate the buffered prefix with a
	// delegated read for the remainder.
	out := make([]byte, 0, length)
	out = append(out, p.buf[offset:]...)

	tail, err := p.wrapped.Read(int64(len(p.buf)), end-len(p.buf))
	if err != nil {
		return nil, err
	}

	return append(out, tail...), nil
}

func (p *prefixBufferedContainer) Write(off int64, bytes []byte) error {
	if offset, ok := clampInt(off); ok && offset < p.size {
		n := len(p.buf)
		end := offset + len(bytes)

		if end <= n {
			copy(p.buf[offset:end], bytes)
		} else {
			if offset > n {
				p.buf = append(p.buf, make([]byte, offset-n)...)
				n = offset
			}

			k := n - offset
			if n > offset {
				copy(p.buf[offset:n], bytes[:k])
			}

			if p.size > n {
				if end <= p.size {
					p.buf = append(p.buf, bytes[k:]...)
				} else {
					p.buf = append(p.buf, bytes[k:p.size-n+k]...)
				}
			}
		}
	}

	return p.wrapped.Write(off, bytes)
}

func (p *prefixBufferedContainer) Append(bytes []byte) error {
	n := len(p.buf)

	if n < p.size {
		k := p.size - n
		if k > len(bytes) {
			p.buf = append(p.buf, bytes...)
		} else {
			p.buf = append(p.buf, bytes[:k]...)
		}
	}

	return p.wrapped.Append(bytes)
}

func (p *prefixBufferedContainer) Len() (int64, error) {
	return p.wrapped.Len()
}

// clampInt converts a non-negative int64 offset to int, reporting whether
// it fits without overflow.
func clampInt(off int64) (int, bool) {
	if off < 0 {
		return 0, false
	}

	asInt := int(off)

	return asInt, int64(asInt) == off
}
