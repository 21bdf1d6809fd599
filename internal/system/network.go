package system

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// interfacePriority orders candidate interfaces: wifi first, then ethernet.
func interfacePriority(name string) int {
	switch {
	case strings.HasPrefix(name, "wlan"), strings.HasPrefix(name, "wl"):
		return 0
	case strings.HasPrefix(name, "eth"), strings.HasPrefix(name, "en"):
		return 1
	default:
		return 2
	}
}

// PreferredIPv4 returns the IPv4 address a phone on the same network would
// use to reach this device.
func PreferredIPv4(ctx context.Context) (string, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	return pickIPv4(ifaces)
}

func pickIPv4(ifaces []psnet.InterfaceStat) (string, error) {
	type candidate struct {
		priority int
		name     string
		ip       string
	}
	var candidates []candidate
	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		for _, addr := range iface.Addrs {
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				ip = net.ParseIP(addr.Addr)
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
				continue
			}
			candidates = append(candidates, candidate{priority: interfacePriority(iface.Name), name: iface.Name, ip: ip.To4().String()})
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no IPv4 address on any interface")
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		return candidates[i].name < candidates[j].name
	})
	return candidates[0].ip, nil
}

func hasFlag(flags []string, want string) bool {
	for _, flag := range flags {
		if flag == want {
			return true
		}
	}
	return false
}

// RemoteURL builds the web remote URL for a listen address such as ":8080".
// Hosts in listen are kept; an empty or wildcard host is replaced by
// PreferredIPv4.
func RemoteURL(ctx context.Context, listen string) (string, error) {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "", fmt.Errorf("listen address %q: %w", listen, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host, err = PreferredIPv4(ctx)
		if err != nil {
			return "", err
		}
	}
	if port == "80" {
		return "http://" + host + "/", nil
	}
	return "http://" + net.JoinHostPort(host, port) + "/", nil
}
