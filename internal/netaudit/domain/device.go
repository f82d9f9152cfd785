package domain

import (
	"fmt"
	"time"
)

// Device is a single inventory entry: one network element to audit
type Device struct {
	Hostname string `yaml:"hostname" json:"hostname"`
	Platform string `yaml:"platform" json:"platform"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
	Port     int    `yaml:"port" json:"port"`
}

// ConnectionConfig is the immutable value describing how to reach one device.
// It is built right before acquisition and thrown away after use.
type ConnectionConfig struct {
	Hostname   string
	DeviceType string
	Username   string
	Password   string
	Port       int
	Timeout    time.Duration
}

// IdentityKey determines whether a pooled session can be reused: two configs
// with the same key address the same CLI endpoint with the same credentials.
type IdentityKey struct {
	Hostname   string
	DeviceType string
	Username   string
}

// Key returns the pool identity for this config
func (c ConnectionConfig) Key() IdentityKey {
	return IdentityKey{
		Hostname:   c.Hostname,
		DeviceType: c.DeviceType,
		Username:   c.Username,
	}
}

func (k IdentityKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Hostname, k.DeviceType, k.Username)
}

// Normalize returns a copy with port and timeout defaults applied
func (c ConnectionConfig) Normalize() ConnectionConfig {
	if c.Port == 0 {
		c.Port = 22
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	return c
}

// Address returns the dial address for this config
func (c ConnectionConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}
