package orderbook

// rbtree is a red-black tree of PriceLevels keyed by price, used by
// both sides of the book. Deterministic O(log n) insert/delete/lookup
// keeps UpsertLevel/DeleteLevel cheap regardless of how many distinct
// prices are resting, and ForEachAscending/ForEachDescending give the
// ordered walk a snapshot needs without a separate sorted index.
//
// Levels are their own tree nodes (see PriceLevel's rb* fields) — there
// is no separate node type wrapping a price/level pair, so indexing a
// level costs nothing beyond the PriceLevel allocation UpsertLevel
// already needs.

type color uint8

const (
	red   color = 0
	black color = 1
)

type rbtree struct {
	root *PriceLevel
	nilN *PriceLevel // sentinel, always black
	size int
}

func newRBTree() *rbtree {
	sentinel := &PriceLevel{rbColor: black}
	return &rbtree{root: sentinel, nilN: sentinel}
}

func (t *rbtree) Size() int { return t.size }

func (t *rbtree) FindLevel(price int64) *PriceLevel {
	n := t.root
	for n != t.nilN {
		switch {
		case price < n.Price:
			n = n.rbLeft
		case price > n.Price:
			n = n.rbRight
		default:
			return n
		}
	}
	return nil
}

func (t *rbtree) UpsertLevel(price int64) *PriceLevel {
	y := t.nilN
	x := t.root
	for x != t.nilN {
		y = x
		switch {
		case price < x.Price:
			x = x.rbLeft
		case price > x.Price:
			x = x.rbRight
		default:
			return x
		}
	}

	z := newPriceLevel(price)
	z.rbColor = red
	z.rbLeft, z.rbRight, z.rbParent = t.nilN, t.nilN, y

	switch {
	case y == t.nilN:
		t.root = z
	case z.Price < y.Price:
		y.rbLeft = z
	default:
		y.rbRight = z
	}
	t.insertFixup(z)
	t.size++
	return z
}

func (t *rbtree) DeleteLevel(price int64) bool {
	z := t.searchNode(price)
	if z == t.nilN {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

func (t *rbtree) MinLevel() *PriceLevel {
	n := t.minNode(t.root)
	if n == t.nilN {
		return nil
	}
	return n
}

func (t *rbtree) MaxLevel() *PriceLevel {
	n := t.maxNode(t.root)
	if n == t.nilN {
		return nil
	}
	return n
}

func (t *rbtree) ForEachAscending(fn func(*PriceLevel) bool) {
	for n := t.minNode(t.root); n != t.nilN; n = t.next(n) {
		if !fn(n) {
			return
		}
	}
}

func (t *rbtree) ForEachDescending(fn func(*PriceLevel) bool) {
	for n := t.maxNode(t.root); n != t.nilN; n = t.prev(n) {
		if !fn(n) {
			return
		}
	}
}

// ---- internal helpers: CLRS insert/delete fixups, walked over the
// rb* fields embedded on PriceLevel instead of a standalone node type.

func (t *rbtree) searchNode(price int64) *PriceLevel {
	n := t.root
	for n != t.nilN {
		switch {
		case price < n.Price:
			n = n.rbLeft
		case price > n.Price:
			n = n.rbRight
		default:
			return n
		}
	}
	return t.nilN
}

func (t *rbtree) minNode(n *PriceLevel) *PriceLevel {
	if n == t.nilN {
		return t.nilN
	}
	for n.rbLeft != t.nilN {
		n = n.rbLeft
	}
	return n
}

func (t *rbtree) maxNode(n *PriceLevel) *PriceLevel {
	if n == t.nilN {
		return t.nilN
	}
	for n.rbRight != t.nilN {
		n = n.rbRight
	}
	return n
}

func (t *rbtree) next(n *PriceLevel) *PriceLevel {
	if n.rbRight != t.nilN {
		return t.minNode(n.rbRight)
	}
	p := n.rbParent
	for p != t.nilN && n == p.rbRight {
		n = p
		p = p.rbParent
	}
	return p
}

func (t *rbtree) prev(n *PriceLevel) *PriceLevel {
	if n.rbLeft != t.nilN {
		return t.maxNode(n.rbLeft)
	}
	p := n.rbParent
	for p != t.nilN && n == p.rbLeft {
		n = p
		p = p.rbParent
	}
	return p
}

func (t *rbtree) leftRotate(x *PriceLevel) {
	y := x.rbRight
	x.rbRight = y.rbLeft
	if y.rbLeft != t.nilN {
		y.rbLeft.rbParent = x
	}
	y.rbParent = x.rbParent
	switch {
	case x.rbParent == t.nilN:
		t.root = y
	case x == x.rbParent.rbLeft:
		x.rbParent.rbLeft = y
	default:
		x.rbParent.rbRight = y
	}
	y.rbLeft = x
	x.rbParent = y
}

func (t *rbtree) rightRotate(y *PriceLevel) {
	x := y.rbLeft
	y.rbLeft = x.rbRight
	if x.rbRight != t.nilN {
		x.rbRight.rbParent = y
	}
	x.rbParent = y.rbParent
	switch {
	case y.rbParent == t.nilN:
		t.root = x
	case y == y.rbParent.rbRight:
		y.rbParent.rbRight = x
	default:
		y.rbParent.rbLeft = x
	}
	x.rbRight = y
	y.rbParent = x
}

func (t *rbtree) insertFixup(z *PriceLevel) {
	for z.rbParent.rbColor == red {
		if z.rbParent == z.rbParent.rbParent.rbLeft {
			y := z.rbParent.rbParent.rbRight
			if y.rbColor == red {
				z.rbParent.rbColor = black
				y.rbColor = black
				z.rbParent.rbParent.rbColor = red
				z = z.rbParent.rbParent
			} else {
				if z == z.rbParent.rbRight {
					z = z.rbParent
					t.leftRotate(z)
				}
				z.rbParent.rbColor = black
				z.rbParent.rbParent.rbColor = red
				t.rightRotate(z.rbParent.rbParent)
			}
		} else {
			y := z.rbParent.rbParent.rbLeft
			if y.rbColor == red {
				z.rbParent.rbColor = black
				y.rbColor = black
				z.rbParent.rbParent.rbColor = red
				z = z.rbParent.rbParent
			} else {
				if z == z.rbParent.rbLeft {
					z = z.rbParent
					t.rightRotate(z)
				}
				z.rbParent.rbColor = black
				z.rbParent.rbParent.rbColor = red
				t.leftRotate(z.rbParent.rbParent)
			}
		}
	}
	t.root.rbColor = black
}

func (t *rbtree) transplant(u, v *PriceLevel) {
	switch {
	case u.rbParent == t.nilN:
		t.root = v
	case u == u.rbParent.rbLeft:
		u.rbParent.rbLeft = v
	default:
		u.rbParent.rbRight = v
	}
	v.rbParent = u.rbParent
}

func (t *rbtree) deleteNode(z *PriceLevel) {
	y := z
	yOrigColor := y.rbColor
	var x *PriceLevel

	switch {
	case z.rbLeft == t.nilN:
		x = z.rbRight
		t.transplant(z, z.rbRight)
	case z.rbRight == t.nilN:
		x = z.rbLeft
		t.transplant(z, z.rbLeft)
	default:
		y = t.minNode(z.rbRight)
		yOrigColor = y.rbColor
		x = y.rbRight
		if y.rbParent == z {
			x.rbParent = y
		} else {
			t.transplant(y, y.rbRight)
			y.rbRight = z.rbRight
			y.rbRight.rbParent = y
		}
		t.transplant(z, y)
		y.rbLeft = z.rbLeft
		y.rbLeft.rbParent = y
		y.rbColor = z.rbColor
	}

	if yOrigColor == black {
		t.deleteFixup(x)
	}
}

func (t *rbtree) deleteFixup(x *PriceLevel) {
	for x != t.root && x.rbColor == black {
		if x == x.rbParent.rbLeft {
			w := x.rbParent.rbRight
			if w.rbColor == red {
				w.rbColor = black
				x.rbParent.rbColor = red
				t.leftRotate(x.rbParent)
				w = x.rbParent.rbRight
			}
			if w.rbLeft.rbColor == black && w.rbRight.rbColor == black {
				w.rbColor = red
				x = x.rbParent
			} else {
				if w.rbRight.rbColor == black {
					w.rbLeft.rbColor = black
					w.rbColor = red
					t.rightRotate(w)
					w = x.rbParent.rbRight
				}
				w.rbColor = x.rbParent.rbColor
				x.rbParent.rbColor = black
				w.rbRight.rbColor = black
				t.leftRotate(x.rbParent)
				x = t.root
			}
		} else {
			w := x.rbParent.rbLeft
			if w.rbColor == red {
				w.rbColor = black
				x.rbParent.rbColor = red
				t.rightRotate(x.rbParent)
				w = x.rbParent.rbLeft
			}
			if w.rbRight.rbColor == black && w.rbLeft.rbColor == black {
				w.rbColor = red
				x = x.rbParent
			} else {
				if w.rbLeft.rbColor == black {
					w.rbRight.rbColor = black
					w.rbColor = red
					t.leftRotate(w)
					w = x.rbParent.rbLeft
				}
				w.rbColor = x.rbParent.rbColor
				x.rbParent.rbColor = black
				w.rbLeft.rbColor = black
				t.rightRotate(x.rbParent)
				x = t.root
			}
		}
	}
	x.rbColor = black
}
