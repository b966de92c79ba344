package domain

// RoomID identifies an interchat in the static catalog.
type RoomID string

// Room describes a named broadcast scope. The catalog is static
// configuration; rooms are never created or mutated at runtime, and a
// connection's room is fixed for its whole lifetime.
type Room struct {
	ID          RoomID
	DisplayName string
	Description string
	AvatarURL   string
	BannerURL   string
}

// Catalog is the fixed set of rooms a connection may join. An unknown
// room id at authentication time is a hard rejection.
type Catalog struct {
	rooms map[RoomID]Room
	order []RoomID
}

func NewCatalog(rooms ...Room) Catalog {
	c := Catalog{rooms: make(map[RoomID]Room, len(rooms))}
	for _, room := range rooms {
		if _, ok := c.rooms[room.ID]; ok {
			continue
		}
		c.rooms[room.ID] = room
		c.order = append(c.order, room.ID)
	}
	return c
}

// Resolve looks a room up by exact id match.
func (c Catalog) Resolve(id RoomID) (Room, bool) {
	room, ok := c.rooms[id]
	return room, ok
}

// Rooms returns the catalog in declaration order.
func (c Catalog) Rooms() []Room {
	res := make([]Room, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, c.rooms[id])
	}
	return res
}

// DefaultCatalog is the interchat list shipped with the relay.
func DefaultCatalog() Catalog {
	return NewCatalog(
		Room{
			ID:          "es",
			DisplayName: "Interchat Español",
			Description: "Sala global en español.",
			AvatarURL:   "https://cdn.chatglobal.ml/assets/rooms/es.png",
			BannerURL:   "https://cdn.chatglobal.ml/assets/rooms/es_banner.png",
		},
		Room{
			ID:          "en",
			DisplayName: "Interchat English",
			Description: "Global English room.",
			AvatarURL:   "https://cdn.chatglobal.ml/assets/rooms/en.png",
			BannerURL:   "https://cdn.chatglobal.ml/assets/rooms/en_banner.png",
		},
		Room{
			ID:          "pt",
			DisplayName: "Interchat Português",
			Description: "Sala global em português.",
			AvatarURL:   "https://cdn.chatglobal.ml/assets/rooms/pt.png",
			BannerURL:   "https://cdn.chatglobal.ml/assets/rooms/pt_banner.png",
		},
	)
}
