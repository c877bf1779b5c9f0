package value

// Pair is a two-column scan target.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is a three-column scan target.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Quad is a four-column scan target.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// PairOf scans the first two columns of the row.
func PairOf[A, B any](r *Row) (Pair[A, B], error) {
	var p Pair[A, B]
	if r.Len() < 2 {
		return p, &IndexOutOfBoundsError{Index: 1, Len: r.Len()}
	}
	var err error
	if p.First, err = GetAt[A](r, 0); err != nil {
		return p, err
	}
	if p.Second, err = GetAt[B](r, 1); err != nil {
		return p, err
	}
	return p, nil
}

// TripleOf scans the first three columns of the row.
func TripleOf[A, B, C any](r *Row) (Triple[A, B, C], error) {
	var t Triple[A, B, C]
	if r.Len() < 3 {
		return t, &IndexOutOfBoundsError{Index: 2, Len: r.Len()}
	}
	var err error
	if t.First, err = GetAt[A](r, 0); err != nil {
		return t, err
	}
	if t.Second, err = GetAt[B](r, 1); err != nil {
		return t, err
	}
	if t.Third, err = GetAt[C](r, 2); err != nil {
		return t, err
	}
	return t, nil
}

// QuadOf scans the first four columns of the row.
func QuadOf[A, B, C, D any](r *Row) (Quad[A, B, C, D], error) {
	var q Quad[A, B, C, D]
	if r.Len() < 4 {
		return q, &IndexOutOfBoundsError{Index: 3, Len: r.Len()}
	}
	var err error
	if q.First, err = GetAt[A](r, 0); err != nil {
		return q, err
	}
	if q.Second, err = GetAt[B](r, 1); err != nil {
		return q, err
	}
	if q.Third, err = GetAt[C](r, 2); err != nil {
		return q, err
	}
	if q.Fourth, err = GetAt[D](r, 3); err != nil {
		return q, err
	}
	return q, nil
}
