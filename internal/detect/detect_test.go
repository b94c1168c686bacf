package detect

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"wifilayer/internal/model"
)

func TestMock_ReturnsKnownScenario(t *testing.T) {
	t.Parallel()

	m := NewMock(rand.NewSource(1), 0)
	known := map[string]bool{}
	for _, s := range Scenarios() {
		known[s.SSID] = true
	}
	for i := 0; i < 20; i++ {
		obs, err := m.DescribeCurrentNetwork(context.Background())
		if err != nil {
			t.Fatalf("Describe: %v", err)
		}
		if obs == nil || !known[obs.SSID] || !obs.Connected {
			t.Fatalf("unexpected observation: %+v", obs)
		}
	}
}

func TestMock_SameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := NewMock(rand.NewSource(42), 0)
	b := NewMock(rand.NewSource(42), 0)
	for i := 0; i < 10; i++ {
		x, _ := a.DescribeCurrentNetwork(context.Background())
		y, _ := b.DescribeCurrentNetwork(context.Background())
		if x.SSID != y.SSID {
			t.Fatalf("step %d: %s != %s", i, x.SSID, y.SSID)
		}
	}
}

func TestMock_DelayHonoursCancel(t *testing.T) {
	t.Parallel()

	m := NewMock(rand.NewSource(1), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	obs, err := m.DescribeCurrentNetwork(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
	if obs != nil {
		t.Fatalf("obs=%+v", obs)
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	obs, err := Static{}.DescribeCurrentNetwork(context.Background())
	if err != nil || obs != nil {
		t.Fatalf("empty static: obs=%+v err=%v", obs, err)
	}

	signal := 60
	src := &model.NetworkObservation{SSID: "cafe", AuthScheme: "open", Signal: &signal, Connected: true}
	got, err := Static{Observation: src}.DescribeCurrentNetwork(context.Background())
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if got == src || got.Signal == src.Signal {
		t.Fatalf("expected a copy")
	}
	if got.SSID != "cafe" || *got.Signal != 60 {
		t.Fatalf("got=%+v", got)
	}

	src.Connected = false
	if got, _ := (Static{Observation: src}).DescribeCurrentNetwork(context.Background()); got != nil {
		t.Fatalf("disconnected should be absent: %+v", got)
	}
}
