package codec

import (
	"encoding/binary"
	"fmt"
)

// FrameSize is the length of every telemetry uplink.
const FrameSize = 26

// ValueScale maps physical readings into the semi-float range.
const ValueScale float32 = 100

const (
	weatherOffset     = 0
	particulateOffset = 4
	reservedOffset    = 24
)

// Weather holds the temperature and humidity channels.
type Weather struct {
	Temperature float32 // degrees Celsius
	Humidity    float32 // percent relative humidity
}

// Particulate holds the particulate sensor channels in frame order.
type Particulate struct {
	MassPM1_0           float32 // µg/m³
	MassPM2_5           float32
	MassPM4_0           float32
	MassPM10            float32
	NumberPM0_5         float32 // #/cm³
	NumberPM1_0         float32
	NumberPM2_5         float32
	NumberPM4_0         float32
	NumberPM10          float32
	TypicalParticleSize float32 // µm
}

// Telemetry is one decoded telemetry uplink.
type Telemetry struct {
	Weather
	Particulate
}

func (w Weather) values() []float32 {
	return []float32{w.Temperature, w.Humidity}
}

func (p Particulate) values() []float32 {
	return []float32{
		p.MassPM1_0, p.MassPM2_5, p.MassPM4_0, p.MassPM10,
		p.NumberPM0_5, p.NumberPM1_0, p.NumberPM2_5, p.NumberPM4_0, p.NumberPM10,
		p.TypicalParticleSize,
	}
}

// EncodeTelemetry packs t into a FrameSize byte frame.
func EncodeTelemetry(t Telemetry) []byte {
	frame := make([]byte, FrameSize)
	copy(frame[weatherOffset:], EncodeReading(t.Weather.values(), ValueScale))
	copy(frame[particulateOffset:], EncodeReading(t.Particulate.values(), ValueScale))
	return frame
}

// DecodeTelemetry unpacks a telemetry frame. The reserved tail is ignored.
func DecodeTelemetry(frame []byte) (Telemetry, error) {
	if len(frame) < FrameSize {
		return Telemetry{}, fmt.Errorf("%w: telemetry frame is %d bytes, want %d", ErrShortPayload, len(frame), FrameSize)
	}
	ch := make([]float32, reservedOffset/2)
	for i := range ch {
		ch[i] = DecodeFloat16(binary.LittleEndian.Uint16(frame[2*i:])) * ValueScale
	}
	return Telemetry{
		Weather: Weather{Temperature: ch[0], Humidity: ch[1]},
		Particulate: Particulate{
			MassPM1_0:           ch[2],
			MassPM2_5:           ch[3],
			MassPM4_0:           ch[4],
			MassPM10:            ch[5],
			NumberPM0_5:         ch[6],
			NumberPM1_0:         ch[7],
			NumberPM2_5:         ch[8],
			NumberPM4_0:         ch[9],
			NumberPM10:          ch[10],
			TypicalParticleSize: ch[11],
		},
	}, nil
}
