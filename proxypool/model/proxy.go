package model

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// State is the lifecycle stage of a proxy candidate within one Manager.
//
//	Discovered -> Validating -> Active -> Excluded
//	                         \-> Rejected
type State int

const (
	Discovered State = iota
	Validating
	Active
	Rejected
	Excluded
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Validating:
		return "validating"
	case Active:
		return "active"
	case Rejected:
		return "rejected"
	case Excluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Candidate is an ip:port pair scraped from the proxy catalog.
type Candidate struct {
	IP   string
	Port int

	// 健康检查结果
	State       State
	Latency     time.Duration
	LastChecked time.Time
}

// ParseCandidate reads an "ip:port" catalog cell.
func ParseCandidate(s string) (Candidate, error) {
	host, portStr, err := net.SplitHostPort(strings.TrimSpace(s))
	if err != nil {
		return Candidate{}, fmt.Errorf("parse proxy candidate %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Candidate{}, fmt.Errorf("parse proxy candidate %q: invalid port", s)
	}
	return Candidate{IP: host, Port: port}, nil
}

// ID is "ip:port".
func (c Candidate) ID() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// URL is the form used for proxying and for exclusion bookkeeping.
func (c Candidate) URL() string {
	return "http://" + c.ID()
}
