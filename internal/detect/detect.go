package detect

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"wifilayer/internal/model"
)

// Describer reports the currently active wireless network.
// A nil observation with a nil error means no network is connected.
type Describer interface {
	DescribeCurrentNetwork(ctx context.Context) (*model.NetworkObservation, error)
}

// Scenarios are the demo networks served by Mock.
func Scenarios() []model.NetworkObservation {
	return []model.NetworkObservation{
		{SSID: "HomeNetwork_5G", BSSID: "aa:bb:cc:dd:ee:ff", AuthScheme: "wpa2-psk", Signal: intPtr(85), Connected: true},
		{SSID: "PublicWiFi", BSSID: "11:22:33:44:55:66", AuthScheme: "open", Signal: intPtr(72), Connected: true},
		{SSID: "SecureOffice", BSSID: "ff:ee:dd:cc:bb:aa", AuthScheme: "wpa3-sae", Signal: intPtr(91), Connected: true},
		{SSID: "OldRouter", BSSID: "00:11:22:33:44:55", AuthScheme: "wep", Signal: intPtr(45), Connected: true},
	}
}

// Mock picks a random demo scenario on every call.
type Mock struct {
	// Delay simulates a slow scan. The wait is cut short by ctx.
	Delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMock returns a Mock. A nil src seeds from the clock.
func NewMock(src rand.Source, delay time.Duration) *Mock {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Mock{Delay: delay, rnd: rand.New(src)}
}

func (m *Mock) DescribeCurrentNetwork(ctx context.Context) (*model.NetworkObservation, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	scenarios := Scenarios()
	m.mu.Lock()
	i := m.rnd.Intn(len(scenarios))
	m.mu.Unlock()
	obs := scenarios[i]
	return &obs, nil
}

// Static always reports the same observation, or none when Observation is nil.
type Static struct {
	Observation *model.NetworkObservation
}

func (s Static) DescribeCurrentNetwork(ctx context.Context) (*model.NetworkObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Observation == nil || !s.Observation.Connected {
		return nil, nil
	}
	obs := *s.Observation
	if obs.Signal != nil {
		obs.Signal = intPtr(*obs.Signal)
	}
	return &obs, nil
}

func intPtr(v int) *int {
	return &v
}
