//go:build windows
// +build windows

package edgesource

// winGPIO emulates a GPIO controller for development off the target
// hardware; its pins never change level on their own.
type winGPIO struct{}

// OpenGPIO returns a no-op emulated controller.
func OpenGPIO() (GPIO, error) {
	return &winGPIO{}, nil
}

func (g *winGPIO) NewPin(bcm int) (Pin, error) {
	return &winPin{}, nil
}

func (g *winGPIO) Close() error {
	return nil
}

type winPin struct {
	high bool
}

func (p *winPin) Read() bool { return p.high }
func (p *winPin) PullUp()    {}
func (p *winPin) PullDown()  {}

// Set lets a test or development harness drive the emulated pin level.
func (p *winPin) Set(level bool) {
	p.high = level
}
