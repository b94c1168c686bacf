package stunutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pion/stun/v3"
)

const (
	NATTypeUnknown          = "unknown"
	NATTypeSymmetric        = "symmetric"
	NATTypeConeOrRestricted = "cone_or_restricted"
)

// Exposure is what the outside world sees of this host.
type Exposure struct {
	PublicAddr string `json:"public_addr"`
	NATType    string `json:"nat_type"`
	Responded  int    `json:"responded"`
}

// Prober resolves the public exposure of the current connection.
type Prober interface {
	Probe(ctx context.Context) (Exposure, error)
}

// Client probes a fixed list of STUN servers.
type Client struct {
	Servers []string
	Timeout time.Duration
}

func NewClient(servers []string, timeout time.Duration) *Client {
	return &Client{Servers: servers, Timeout: timeout}
}

// Probe queries every server for a mapped address. The first answer is the public
// address and the NAT type is inferred from whether the answers agree.
func (c *Client) Probe(ctx context.Context) (Exposure, error) {
	if len(c.Servers) == 0 {
		return Exposure{NATType: NATTypeUnknown}, errors.New("no STUN servers provided")
	}

	results := make([]string, 0, len(c.Servers))
	var lastErr error
	for _, server := range c.Servers {
		addr, err := bindingRequest(ctx, server, c.Timeout)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", server, err)
			continue
		}
		results = append(results, addr)
	}

	if len(results) == 0 {
		if lastErr == nil {
			lastErr = errors.New("STUN probe failed")
		}
		return Exposure{NATType: NATTypeUnknown}, lastErr
	}

	return Exposure{PublicAddr: results[0], NATType: Classify(results), Responded: len(results)}, nil
}

// Classify infers NAT type by comparing mapped addresses from multiple servers.
func Classify(addrs []string) string {
	if len(addrs) < 2 {
		return NATTypeUnknown
	}
	for _, addr := range addrs[1:] {
		if addr != addrs[0] {
			return NATTypeSymmetric
		}
	}
	return NATTypeConeOrRestricted
}

func normalizeURI(server string) (string, error) {
	s := strings.TrimSpace(server)
	if s == "" {
		return "", errors.New("empty STUN server")
	}
	if !strings.HasPrefix(s, "stun:") {
		s = "stun:" + s
	}
	return s, nil
}

func bindingRequest(ctx context.Context, server string, timeout time.Duration) (string, error) {
	uriStr, err := normalizeURI(server)
	if err != nil {
		return "", err
	}
	uri, err := stun.ParseURI(uriStr)
	if err != nil {
		return "", err
	}

	client, err := stun.DialURI(uri, &stun.DialConfig{})
	if err != nil {
		return "", err
	}
	defer client.Close()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type answer struct {
		addr string
		err  error
	}
	done := make(chan answer, 1)
	msg := stun.MustBuild(stun.TransactionID, stun.BindingRequest)

	go func() {
		err := client.Do(msg, func(res stun.Event) {
			if res.Error != nil {
				done <- answer{err: res.Error}
				return
			}
			var addr stun.XORMappedAddress
			if err := addr.GetFrom(res.Message); err != nil {
				done <- answer{err: err}
				return
			}
			done <- answer{addr: addr.String()}
		})
		if err != nil {
			select {
			case done <- answer{err: err}:
			default:
			}
		}
	}()

	select {
	case a := <-done:
		return a.addr, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
