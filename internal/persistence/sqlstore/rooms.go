package sqlstore

import (
	"context"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

const roomColumns = `id, name, access, capacity, equipment, location, info, image_url, deleted`

type roomRepository struct {
	q execer
}

func (r roomRepository) CreateRoom(ctx context.Context, room persistence.Room) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO rooms (name, access, capacity, equipment, location, info, image_url, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		room.Name, room.Access, room.Capacity, joinEquipment(room.Equipment),
		room.Location, room.Info, room.ImageURL,
	)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (r roomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE rooms
		SET name = ?, access = ?, capacity = ?, equipment = ?, location = ?, info = ?, image_url = ?
		WHERE id = ? AND deleted = 0`,
		room.Name, room.Access, room.Capacity, joinEquipment(room.Equipment),
		room.Location, room.Info, room.ImageURL, room.ID,
	)
	return expectRow(res, err)
}

func (r roomRepository) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

func (r roomRepository) ListRooms(ctx context.Context, includeDeleted bool) ([]persistence.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	if !includeDeleted {
		query += ` WHERE deleted = 0`
	}
	query += ` ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
	}
	return rooms, mapError(rows.Err())
}

func (r roomRepository) SoftDeleteRoom(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `UPDATE rooms SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	return expectRow(res, err)
}

func scanRoom(s scanner) (persistence.Room, error) {
	var (
		room      persistence.Room
		equipment string
		deleted   int
	)
	if err := s.Scan(&room.ID, &room.Name, &room.Access, &room.Capacity, &equipment,
		&room.Location, &room.Info, &room.ImageURL, &deleted); err != nil {
		return persistence.Room{}, err
	}
	room.Equipment = splitEquipment(equipment)
	room.Deleted = deleted != 0
	return room, nil
}

func joinEquipment(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitEquipment(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
