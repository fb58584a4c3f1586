package deployment

import (
	"sort"

	corev1 "k8s.io/api/core/v1"
)

// =============================================================================
// Capability Mapping
// =============================================================================

// capabilityTable maps Docker capability names to security-context
// capability tokens. It is never written after package initialisation.
var capabilityTable = map[string]corev1.Capability{
	"SETPCAP":          "CAP_SETPCAP",
	"SYS_MODULE":       "CAP_SYS_MODULE",
	"SYS_RAWIO":        "CAP_SYS_RAWIO",
	"SYS_PACCT":        "CAP_SYS_PACCT",
	"SYS_ADMIN":        "CAP_SYS_ADMIN",
	"SYS_NICE":         "CAP_SYS_NICE",
	"SYS_RESOURCE":     "CAP_SYS_RESOURCE",
	"SYS_TIME":         "CAP_SYS_TIME",
	"SYS_TTY_CONFIG":   "CAP_SYS_TTY_CONFIG",
	"MKNOD":            "CAP_MKNOD",
	"AUDIT_WRITE":      "CAP_AUDIT_WRITE",
	"AUDIT_CONTROL":    "CAP_AUDIT_CONTROL",
	"MAC_OVERRIDE":     "CAP_MAC_OVERRIDE",
	"MAC_ADMIN":        "CAP_MAC_ADMIN",
	"NET_ADMIN":        "CAP_NET_ADMIN",
	"SYSLOG":           "CAP_SYSLOG",
	"CHOWN":            "CAP_CHOWN",
	"NET_RAW":          "CAP_NET_RAW",
	"DAC_OVERRIDE":     "CAP_DAC_OVERRIDE",
	"FOWNER":           "CAP_FOWNER",
	"DAC_READ_SEARCH":  "CAP_DAC_READ_SEARCH",
	"FSETID":           "CAP_FSETID",
	"KILL":             "CAP_KILL",
	"SETGID":           "CAP_SETGID",
	"SETUID":           "CAP_SETUID",
	"LINUX_IMMUTABLE":  "CAP_LINUX_IMMUTABLE",
	"NET_BIND_SERVICE": "CAP_NET_BIND_SERVICE",
	"NET_BROADCAST":    "CAP_NET_BROADCAST",
	"IPC_LOCK":         "CAP_IPC_LOCK",
	"IPC_OWNER":        "CAP_IPC_OWNER",
	"SYS_CHROOT":       "CAP_SYS_CHROOT",
	"SYS_PTRACE":       "CAP_SYS_PTRACE",
	"SYS_BOOT":         "CAP_SYS_BOOT",
	"LEASE":            "CAP_LEASE",
	"SETFCAP":          "CAP_SETFCAP",
	"WAKE_ALARM":       "CAP_WAKE_ALARM",
	"BLOCK_SUSPEND":    "CAP_BLOCK_SUSPEND",
}

// MapCapability translates a Docker capability name such as "NET_ADMIN" into
// its security-context token ("CAP_NET_ADMIN").
//
// Example:
//
//	c, err := MapCapability("NET_ADMIN") // c == "CAP_NET_ADMIN"
//	_, err = MapCapability("FLY")        // err is *UnknownCapabilityError
func MapCapability(name string) (corev1.Capability, error) {
	c, ok := capabilityTable[name]
	if !ok {
		return "", &UnknownCapabilityError{Capability: name}
	}
	return c, nil
}

// KnownCapabilities returns the Docker capability names the table knows,
// sorted.
func KnownCapabilities() []string {
	names := make([]string, 0, len(capabilityTable))
	for name := range capabilityTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
