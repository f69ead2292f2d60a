package probes

import (
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/ocochard/cmonit/internal/validate"
)

// Icmp implements validate.IcmpProbe over pro-bing's privileged raw-socket
// pinger. A permission error on socket creation is translated to
// validate.ErrNoPrivilege so check_remote_host can tell "host down" from
// "we can't even try".
type Icmp struct{}

func (Icmp) Echo(host string, timeout time.Duration, count int) (float64, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return -1, err
	}
	pinger.SetPrivileged(true)
	pinger.Count = count
	pinger.Timeout = timeout

	if err := pinger.Run(); err != nil {
		if isPermissionError(err) {
			return -2, validate.ErrNoPrivilege
		}
		return -1, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return -1, errTimeout
	}
	return stats.AvgRtt.Seconds(), nil
}

var errTimeout = &icmpError{"no ICMP echo reply received"}

type icmpError struct{ msg string }

func (e *icmpError) Error() string { return e.msg }

func isPermissionError(err error) bool {
	return strings.Contains(err.Error(), "operation not permitted") ||
		strings.Contains(err.Error(), "permission denied")
}
