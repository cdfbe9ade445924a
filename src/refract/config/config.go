// Package config loads the relay's configuration file.
//
// Configuration is read once, before the relay starts; there is no runtime
// reconfiguration surface.
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/jmalloc/refract/src/refract/relay"

	"gopkg.in/yaml.v2"
)

// File is the shape of the YAML configuration file.
type File struct {
	// Port is the UDP port of the relayed discovery protocol. Zero means
	// relay.DefaultPort.
	Port int `yaml:"port"`

	// Buffer is the per-socket kernel receive buffer size, in bytes. Zero
	// leaves the system default in place.
	Buffer int `yaml:"buffer"`

	// AllowLoopback relays datagrams with a loopback source address instead
	// of dropping them.
	AllowLoopback bool `yaml:"allow_loopback"`

	// Interfaces lists the relay-participating interfaces, in order.
	Interfaces []Interface `yaml:"interfaces"`
}

// Interface is one relay-participating interface entry.
type Interface struct {
	Address   string   `yaml:"address"`
	Mask      string   `yaml:"mask"`
	ForwardTo []string `yaml:"forward_to"`
	Reverse   bool     `yaml:"reverse"`
}

// Load reads and validates the configuration file at path.
//
// It returns the interface descriptor set, and the options that carry the
// file's engine settings to relay.New().
func Load(path string) (relay.DescriptorSet, []relay.Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read configuration: %w", err)
	}

	set, options, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return set, options, nil
}

// Parse parses and validates configuration file content.
func Parse(data []byte) (relay.DescriptorSet, []relay.Option, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, nil, fmt.Errorf("cannot parse configuration: %w", err)
	}

	if len(f.Interfaces) == 0 {
		return nil, nil, fmt.Errorf("no interfaces configured")
	}

	var set relay.DescriptorSet
	for i, entry := range f.Interfaces {
		d, err := descriptor(entry)
		if err != nil {
			return nil, nil, fmt.Errorf("interface #%d: %w", i+1, err)
		}

		set = append(set, d)
	}

	var options []relay.Option

	if f.Port != 0 {
		options = append(options, relay.UsePort(f.Port))
	}

	if f.Buffer != 0 {
		options = append(options, relay.UseReadBuffer(f.Buffer))
	}

	if f.AllowLoopback {
		options = append(options, relay.AllowLoopbackSources)
	}

	return set, options, nil
}

// descriptor converts one file entry into a validated descriptor.
func descriptor(entry Interface) (relay.Descriptor, error) {
	var d relay.Descriptor

	addr := net.ParseIP(entry.Address)
	if addr == nil || addr.To4() == nil {
		return d, fmt.Errorf("'%s' is not an IPv4 address", entry.Address)
	}
	d.Address = addr.To4()

	mask := net.ParseIP(entry.Mask)
	if mask == nil || mask.To4() == nil {
		return d, fmt.Errorf("'%s' is not an IPv4 subnet mask", entry.Mask)
	}
	d.Mask = net.IPMask(mask.To4())

	for _, t := range entry.ForwardTo {
		ip := net.ParseIP(t)
		if ip == nil || ip.To4() == nil {
			return d, fmt.Errorf("forwarding destination '%s' is not an IPv4 address", t)
		}

		d.ForwardTo = append(d.ForwardTo, ip.To4())
	}

	d.Reverse = entry.Reverse

	if err := d.Validate(); err != nil {
		return d, err
	}

	return d, nil
}
