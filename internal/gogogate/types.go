package gogogate

import "strconv"

// Doors is the number of door slots on a GoGoGate2 controller. The firmware
// always reports all three, wired or not.
const Doors = 3

// DoorState is a status code as reported by statusDoorAll.php.
type DoorState int

const (
	DoorClosed   DoorState = 0
	DoorPulse    DoorState = 1
	DoorOpen     DoorState = 2
	DoorStarting DoorState = 4
)

func (s DoorState) String() string {
	switch s {
	case DoorClosed:
		return "closed"
	case DoorPulse:
		return "pulse"
	case DoorOpen:
		return "open"
	case DoorStarting:
		return "starting"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// DoorStates holds one status code per door, index 0 = door 1.
type DoorStates [Doors]DoorState

// Temperatures holds one reading in Fahrenheit per door, index 0 = door 1.
// Doors without a sensor report 0.
type Temperatures [Doors]float64

// noSensorSentinel is the raw milli-degree value the temperature endpoint
// returns for a door with no sensor installed.
const noSensorSentinel = "-1000000"

// fahrenheitFromRaw converts the endpoint's raw milli-degree-Celsius string.
func fahrenheitFromRaw(raw string) (float64, error) {
	if raw == noSensorSentinel {
		return 0, nil
	}
	milli, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	celsius := milli / 1000.0
	return celsius*9.0/5.0 + 32.0, nil
}
