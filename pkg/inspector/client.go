package inspector

import (
	"errors"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	"firestige.xyz/nodo/pkg/log"
)

// Client receives report frames in a report viewer.
type Client struct {
	socket         mangos.Socket
	datarate       DatarateEstimation
	lastReportTime time.Time
}

// NewClient dials the inspector endpoint and subscribes to all reports.
func NewClient(address string) (*Client, error) {
	log.GetLogger().Infof("opening inspector SUB socket at %q", address)

	socket, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("inspector: open SUB socket: %w", err)
	}
	if err := socket.Dial(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("inspector: dial %q: %w", address, err)
	}
	if err := socket.SetOption(mangos.OptionSubscribe, []byte{}); err != nil {
		socket.Close()
		return nil, fmt.Errorf("inspector: subscribe: %w", err)
	}
	if err := socket.SetOption(mangos.OptionRecvDeadline, time.Millisecond); err != nil {
		socket.Close()
		return nil, fmt.Errorf("inspector: set recv deadline: %w", err)
	}

	return &Client{socket: socket}, nil
}

// TryRecv drains the socket and decodes the newest pending report, or
// returns nil when none arrived.
func (c *Client) TryRecv() (*Report, error) {
	var latest []byte
	for {
		frame, err := c.socket.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				break
			}
			return nil, fmt.Errorf("inspector: recv: %w", err)
		}
		c.datarate.Push(uint64(len(frame)))
		latest = frame
	}

	if latest == nil {
		return nil, nil
	}
	c.lastReportTime = time.Now()
	return DecodeFrame(latest)
}

// Datarate is the estimated receive rate in bytes per second.
func (c *Client) Datarate() float64 { return c.datarate.Datarate() }

// LastReportTime is the arrival time of the newest report.
func (c *Client) LastReportTime() time.Time { return c.lastReportTime }

// Close shuts the socket down.
func (c *Client) Close() error { return c.socket.Close() }

// DatarateEstimation smooths the received byte rate over three-second
// windows.
type DatarateEstimation struct {
	totalBytes     uint64
	datarate       float64
	lastStep       time.Time
	bytesSinceStep uint64
}

// Push records one received frame.
func (d *DatarateEstimation) Push(n uint64) {
	d.bytesSinceStep += n
	d.totalBytes += n

	now := time.Now()
	if d.lastStep.IsZero() {
		d.lastStep = now
		return
	}
	if dt := now.Sub(d.lastStep).Seconds(); dt > 3.0 {
		d.lastStep = now
		d.datarate = 0.2*d.datarate + 0.8*float64(d.bytesSinceStep)/dt
		d.bytesSinceStep = 0
	}
}

// Datarate in bytes per second.
func (d *DatarateEstimation) Datarate() float64 { return d.datarate }
