// Package discovery announces and finds countdown servers on the local
// network over mDNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Service type and domain used for every countdown server.
const (
	ServiceType = "_countdown._tcp"
	Domain      = "local."
)

// Info describes an advertised server.
type Info struct {
	Instance string
	Port     int
	Version  string
	Path     string
}

// Service is a server found by Browse.
type Service struct {
	Instance  string   `json:"instance"`
	Host      string   `json:"host"`
	Port      int      `json:"port"`
	Addresses []string `json:"addresses"`
	Version   string   `json:"version,omitempty"`
	Path      string   `json:"path,omitempty"`
}

// URL returns an http URL for the first known address, falling back to the
// host name.
func (s *Service) URL() string {
	host := strings.TrimSuffix(s.Host, ".")
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(host, fmt.Sprint(s.Port)), s.Path)
}

// EncodeTXT builds the TXT records for info.
func EncodeTXT(info Info) []string {
	var txt []string
	if info.Version != "" {
		txt = append(txt, "version="+info.Version)
	}
	if info.Path != "" {
		txt = append(txt, "path="+info.Path)
	}
	return txt
}

// DecodeTXT parses key=value TXT records. Records without '=' are ignored.
func DecodeTXT(txt []string) map[string]string {
	out := make(map[string]string, len(txt))
	for _, record := range txt {
		k, v, ok := strings.Cut(record, "=")
		if !ok {
			continue
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// Advertiser announces a single countdown server.
type Advertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an idle Advertiser.
func NewAdvertiser() *Advertiser {
	return &Advertiser{}
}

// Advertise starts announcing info, replacing any earlier announcement.
func (a *Advertiser) Advertise(info Info) error {
	if info.Port <= 0 {
		return fmt.Errorf("invalid port %d", info.Port)
	}
	if info.Instance == "" {
		info.Instance = "countdown"
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	server, err := zeroconf.Register(info.Instance, ServiceType, Domain, info.Port, EncodeTXT(info), nil)
	if err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceType, err)
	}
	a.server = server
	return nil
}

// Active reports whether an announcement is running.
func (a *Advertiser) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// Browse collects servers until ctx is done and returns them sorted by
// instance name. Addresses seen on several interfaces are merged.
func Browse(ctx context.Context) ([]*Service, error) {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	found := make(map[string]*Service)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if existing, ok := found[svc.Instance]; ok {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				} else {
					found[svc.Instance] = svc
				}
			case entry, ok := <-removed:
				if ok {
					delete(found, entry.Instance)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	err := zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	<-done
	if err != nil {
		return nil, fmt.Errorf("failed to browse %s: %w", ServiceType, err)
	}

	services := make([]*Service, 0, len(found))
	for _, svc := range found {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Instance < services[j].Instance })
	return services, nil
}

func entryToService(entry *zeroconf.ServiceEntry) *Service {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	txt := DecodeTXT(entry.Text)
	return &Service{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
		Version:   txt["version"],
		Path:      txt["path"],
	}
}

func mergeAddresses(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range more {
		if !seen[a] {
			existing = append(existing, a)
			seen[a] = true
		}
	}
	return existing
}
