package model

// Subsystem names one probed area of the machine.
type Subsystem string

const (
	SubsystemIdentity Subsystem = "identity"
	SubsystemCompute  Subsystem = "compute"
	SubsystemMemory   Subsystem = "memory"
	SubsystemStorage  Subsystem = "storage"
	SubsystemDisplay  Subsystem = "display"
	SubsystemPower    Subsystem = "power"
	SubsystemGraphics Subsystem = "graphics"
)

// RawFacts is what the probes saw, before any unit conversion or enum
// coercion. Values are kept close to the tool output they came from.
type RawFacts struct {
	ServiceTag  string `json:"service_tag,omitempty"`
	ProductName string `json:"product_name,omitempty"`

	CPUModel    string `json:"cpu_model,omitempty"`
	LogicalCPUs int    `json:"logical_cpus,omitempty"`

	MemTotalBytes string   `json:"mem_total_bytes,omitempty"`
	MemoryTypes   []string `json:"memory_types,omitempty"` // DMI "Type:" per populated slot

	Disk RawDisk `json:"disk"`

	Modes []string `json:"modes,omitempty"` // lines that may carry a WxH mode

	Battery RawBattery `json:"battery"`

	GPUs []string `json:"gpus,omitempty"` // display-class PCI device descriptions

	// Unavailable maps a subsystem to the reason its probe failed.
	Unavailable map[Subsystem]string `json:"unavailable,omitempty"`
}

// RawDisk describes the primary internal disk.
type RawDisk struct {
	Device     string `json:"device,omitempty"`     // /dev/nvme0n1
	Controller string `json:"controller,omitempty"` // transport or controller: nvme, sata, NVMe, SCSI
	DriveType  string `json:"drive_type,omitempty"` // HDD, SSD, or rotational flag "1"/"0"
	SizeBytes  string `json:"size_bytes,omitempty"`
	SMART      string `json:"smart,omitempty"` // smartctl health output, JSON or text
}

// RawBattery holds capacity counters in whatever unit the source used.
// Full and Design share a unit so their ratio is meaningful.
type RawBattery struct {
	Present   bool   `json:"present"`
	Full      string `json:"full,omitempty"`
	Design    string `json:"design,omitempty"`
	ACOnline  string `json:"ac_online,omitempty"`
	ACPresent bool   `json:"ac_present"`
}

// MarkUnavailable records why a subsystem could not be read.
func (r *RawFacts) MarkUnavailable(s Subsystem, reason string) {
	if r.Unavailable == nil {
		r.Unavailable = make(map[Subsystem]string)
	}
	r.Unavailable[s] = reason
}

// IsUnavailable reports whether the subsystem's probe failed.
func (r *RawFacts) IsUnavailable(s Subsystem) bool {
	_, ok := r.Unavailable[s]
	return ok
}
