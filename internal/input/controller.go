// Package input implements SNES controller handling: the 12-bit shift
// register read through $4016/$4017 and the automatic-read latch exposed
// at $4218-$421B.
package input

// Button identifies one of the 12 SNES pad buttons. Values match the
// shift-register bit order (first bit out is the high bit of the 16-bit
// report): B,Y,Select,Start,Up,Down,Left,Right,A,X,L,R, then four always-
// zero bits, then four ID bits (all zero for a standard pad).
type Button uint16

const (
	ButtonB      Button = 1 << 15
	ButtonY      Button = 1 << 14
	ButtonSelect Button = 1 << 13
	ButtonStart  Button = 1 << 12
	ButtonUp     Button = 1 << 11
	ButtonDown   Button = 1 << 10
	ButtonLeft   Button = 1 << 9
	ButtonRight  Button = 1 << 8
	ButtonA      Button = 1 << 7
	ButtonX      Button = 1 << 6
	ButtonL      Button = 1 << 5
	ButtonR      Button = 1 << 4
)

// Controller models one SNES pad: a 16-bit shift register loaded from the
// live button state while STROBE (bit0 of $4016) is held high, then shifted
// out one bit per read once STROBE goes low.
type Controller struct {
	buttons       uint16
	shiftRegister uint16
	strobe        bool
}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint16(button)
	} else {
		c.buttons &^= uint16(button)
	}
}

// SetButtons replaces the whole button mask in one call, in the bit order
// documented on Button.
func (c *Controller) SetButtons(mask uint16) {
	c.buttons = mask
}

func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint16(button) != 0
}

// Latch snapshots the live button state into the shift register; called
// either by a manual $4016 strobe write or by the scheduler's automatic
// joypad read at the start of VBlank.
func (c *Controller) Latch() {
	c.shiftRegister = c.buttons
}

// Write handles a CPU write to $4016 (bit0 is the only meaningful bit).
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0
	if c.strobe {
		c.Latch()
	} else if wasStrobe {
		c.Latch()
	}
}

// Read returns the next serial bit in the LSB of the result. Each read
// shifts a 1 into the bottom of the register, so reads after the first 16
// return 1, as on real hardware; the bus supplies the open-bus bits above
// the LSB.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.Latch()
	}
	bit := uint8(c.shiftRegister>>15) & 1
	c.shiftRegister <<= 1
	c.shiftRegister |= 1
	return bit
}

func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
}

// InputState owns both controller ports plus the autoread latch registers.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller

	autoJoy1, autoJoy2 uint16
}

func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
	is.autoJoy1, is.autoJoy2 = 0, 0
}

func (is *InputState) SetButtons1(mask uint16) { is.Controller1.SetButtons(mask) }
func (is *InputState) SetButtons2(mask uint16) { is.Controller2.SetButtons(mask) }

// LatchAutoJoy performs the hardware automatic joypad read: it snapshots
// both pads' full 16-bit state into the $4218-$421B registers. The
// scheduler calls this once per frame during VBlank when $4200 bit0 is set.
func (is *InputState) LatchAutoJoy() {
	is.Controller1.Latch()
	is.Controller2.Latch()
	is.autoJoy1 = is.Controller1.buttons
	is.autoJoy2 = is.Controller2.buttons
}

// Read handles manual serial reads at $4016 (controller 1, bit0) and
// $4017 (controller 2, bit0); bit1 carries the second controller's data
// line on $4016 per hardware, mirrored here as 0 since no multitap is
// modeled.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read()
	default:
		return 0
	}
}

func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}

// ReadAutoJoy handles the $4218-$421B latch registers (low/high byte of
// each controller's last automatic-read snapshot).
func (is *InputState) ReadAutoJoy(address uint16) uint8 {
	switch address {
	case 0x4218:
		return uint8(is.autoJoy1)
	case 0x4219:
		return uint8(is.autoJoy1 >> 8)
	case 0x421A:
		return uint8(is.autoJoy2)
	case 0x421B:
		return uint8(is.autoJoy2 >> 8)
	default:
		return 0
	}
}
