//go:build !windows
// +build !windows

package edgesource

import "github.com/warthog618/gpio"

// rpiGPIO opens GPIO memory range from /dev/gpiomem via warthog618/gpio.
type rpiGPIO struct{}

// OpenGPIO opens the Raspberry Pi's GPIO memory range.
func OpenGPIO() (GPIO, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &rpiGPIO{}, nil
}

func (g *rpiGPIO) NewPin(bcm int) (Pin, error) {
	p := gpio.NewPin(bcm)
	p.Input()
	return &rpiPin{p: p}, nil
}

func (g *rpiGPIO) Close() error {
	gpio.Close()
	return nil
}

type rpiPin struct {
	p *gpio.Pin
}

func (p *rpiPin) Read() bool { return bool(p.p.Read()) }
func (p *rpiPin) PullUp()    { p.p.PullUp() }
func (p *rpiPin) PullDown()  { p.p.PullDown() }
