package bridge

import (
	"fmt"
	"strconv"
	"strings"
)

// Lamp channel states accepted at the application boundary.
const (
	LampOff = 0
	LampOn  = 1
)

// Lamp holds the two independent lamp channels of the camera:
// Upper drives the white LEDs, Lower the RGB LED.
type Lamp struct {
	Upper int `json:"upper" yaml:"upper"`
	Lower int `json:"lower" yaml:"lower"`
}

// Validate checks that both channels are either LampOff or LampOn.
func (l Lamp) Validate() error {
	if l.Upper != LampOff && l.Upper != LampOn {
		return fmt.Errorf("lamp upper must be 0 or 1, got %d", l.Upper)
	}
	if l.Lower != LampOff && l.Lower != LampOn {
		return fmt.Errorf("lamp lower must be 0 or 1, got %d", l.Lower)
	}
	return nil
}

func (l Lamp) String() string {
	return fmt.Sprintf("%d,%d", l.Upper, l.Lower)
}

// ParseLamp parses "upper,lower" (e.g. "1,0") into a validated Lamp.
func ParseLamp(s string) (Lamp, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Lamp{}, fmt.Errorf("lamp must be \"upper,lower\", got %q", s)
	}
	upper, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Lamp{}, fmt.Errorf("lamp upper: %w", err)
	}
	lower, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Lamp{}, fmt.Errorf("lamp lower: %w", err)
	}
	l := Lamp{Upper: upper, Lower: lower}
	if err := l.Validate(); err != nil {
		return Lamp{}, err
	}
	return l, nil
}
