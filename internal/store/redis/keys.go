package redis

const (
	// KeyPrefixSlot is the prefix for catalog slot keys
	KeyPrefixSlot = "navgrid:slot:"
)

// SlotKey returns the Redis key for a named slot
func SlotKey(name string) string {
	return KeyPrefixSlot + name
}
