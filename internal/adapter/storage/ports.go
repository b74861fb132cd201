package storage

import "github.com/rl1809/shareit/internal/port"

var (
	_ port.BookingRepository = (*MySQLAdapter)(nil)
	_ port.ItemRepository    = (*MySQLAdapter)(nil)
	_ port.UserRepository    = (*MySQLAdapter)(nil)
	_ port.RequestRepository = (*MySQLAdapter)(nil)

	_ port.BookingRepository = (*MemoryAdapter)(nil)
	_ port.ItemRepository    = (*MemoryAdapter)(nil)
	_ port.UserRepository    = (*MemoryAdapter)(nil)
	_ port.RequestRepository = (*MemoryAdapter)(nil)

	_ port.CacheRepository = (*RedisAdapter)(nil)
	_ port.CacheRepository = (*MemoryCache)(nil)
)
