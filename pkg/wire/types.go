package wire

// Marshaler is the capability contract for values that know how to encode
// themselves to the wire. Concrete types implement it directly; there is
// no inheritance-style dispatch anywhere in the codec.
type Marshaler interface {
	EncodeWire(w *Writer) error
}

// Unmarshaler is the decoding counterpart of Marshaler.
type Unmarshaler interface {
	DecodeWire(r *Reader) error
}

// Vec2 is a 2D position or offset in world units.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3D position or offset in world units.
type Vec3 struct {
	X, Y, Z float32
}

// Direction is one of the eight compass facings used by world entities.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case NorthEast:
		return "northeast"
	case East:
		return "east"
	case SouthEast:
		return "southeast"
	case South:
		return "south"
	case SouthWest:
		return "southwest"
	case West:
		return "west"
	case NorthWest:
		return "northwest"
	default:
		return "unknown"
	}
}

// Color is an RGBA tint.
type Color struct {
	R, G, B, A uint8
}

// EncodeWire implements Marshaler.
func (v Vec2) EncodeWire(w *Writer) error {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	return nil
}

// DecodeWire implements Unmarshaler.
func (v *Vec2) DecodeWire(r *Reader) error {
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return err
	}
	v.Y, err = r.ReadFloat32()
	return err
}

// EncodeWire implements Marshaler.
func (v Vec3) EncodeWire(w *Writer) error {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	w.WriteFloat32(v.Z)
	return nil
}

// DecodeWire implements Unmarshaler.
func (v *Vec3) DecodeWire(r *Reader) error {
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return err
	}
	if v.Y, err = r.ReadFloat32(); err != nil {
		return err
	}
	v.Z, err = r.ReadFloat32()
	return err
}

// EncodeWire implements Marshaler.
func (d Direction) EncodeWire(w *Writer) error {
	w.WriteUint8(uint8(d))
	return nil
}

// DecodeWire implements Unmarshaler.
func (d *Direction) DecodeWire(r *Reader) error {
	v, err := r.ReadUint8()
	if err != nil {
		return err
	}
	*d = Direction(v)
	return nil
}

// EncodeWire implements Marshaler.
func (c Color) EncodeWire(w *Writer) error {
	w.WriteUint8(c.R)
	w.WriteUint8(c.G)
	w.WriteUint8(c.B)
	w.WriteUint8(c.A)
	return nil
}

// DecodeWire implements Unmarshaler.
func (c *Color) DecodeWire(r *Reader) error {
	var err error
	if c.R, err = r.ReadUint8(); err != nil {
		return err
	}
	if c.G, err = r.ReadUint8(); err != nil {
		return err
	}
	if c.B, err = r.ReadUint8(); err != nil {
		return err
	}
	c.A, err = r.ReadUint8()
	return err
}

// WriteVec2 appends a 2D position (two float32s).
func (w *Writer) WriteVec2(v Vec2) {
	v.EncodeWire(w)
}

// WriteVec3 appends a 3D position (three float32s).
func (w *Writer) WriteVec3(v Vec3) {
	v.EncodeWire(w)
}

// WriteDirection appends a compass facing as a single byte.
func (w *Writer) WriteDirection(d Direction) {
	d.EncodeWire(w)
}

// WriteColor appends an RGBA tint as four bytes.
func (w *Writer) WriteColor(c Color) {
	c.EncodeWire(w)
}

// ReadVec2 reads a 2D position.
func (r *Reader) ReadVec2() (Vec2, error) {
	var v Vec2
	err := v.DecodeWire(r)
	return v, err
}

// ReadVec3 reads a 3D position.
func (r *Reader) ReadVec3() (Vec3, error) {
	var v Vec3
	err := v.DecodeWire(r)
	return v, err
}

// ReadDirection reads a compass facing.
func (r *Reader) ReadDirection() (Direction, error) {
	var d Direction
	err := d.DecodeWire(r)
	return d, err
}

// ReadColor reads an RGBA tint.
func (r *Reader) ReadColor() (Color, error) {
	var c Color
	err := c.DecodeWire(r)
	return c, err
}
