package common

import "time"

// DefaultCeremonyTTL is how long a registration ceremony stays consumable.
const DefaultCeremonyTTL = 5 * time.Minute

// DefaultDisplayName is used when a client starts a ceremony without a name.
const DefaultDisplayName = "ReelForge Creator"
