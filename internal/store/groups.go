package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/focusflow/internal/sanitize"
)

const inviteCodeLen = 6

func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:inviteCodeLen]
}

// CreateGroup creates a group with a fresh invite code and enrolls the
// creator as its first member.
func (s *Store) CreateGroup(name, createdBy, displayName string) (*Group, error) {
	name = sanitize.GroupName(name)
	if name == "" {
		return nil, fmt.Errorf("create group: empty name")
	}

	id := uuid.NewString()
	code := newInviteCode()
	_, err := s.db.Exec(
		`INSERT INTO groups (id, name, invite_code, created_by) VALUES (?, ?, ?, ?)`,
		id, name, code, createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	if err := s.addMember(id, createdBy, displayName); err != nil {
		return nil, err
	}
	return s.GetGroup(id)
}

// JoinGroup enrolls a user into the group matching an invite code.
func (s *Store) JoinGroup(code, userID, displayName string) (*Group, error) {
	code = sanitize.InviteCode(code)

	var id string
	err := s.db.QueryRow(`SELECT id FROM groups WHERE invite_code = ?`, code).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("join group: no group with code %q", code)
	}
	if err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}

	if err := s.addMember(id, userID, displayName); err != nil {
		return nil, err
	}
	return s.GetGroup(id)
}

func (s *Store) addMember(groupID, userID, displayName string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO group_members (group_id, user_id, display_name) VALUES (?, ?, ?)`,
		groupID, userID, sanitize.Username(displayName),
	)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(id string) (*Group, error) {
	g := &Group{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, invite_code, created_by, created_at FROM groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get group %s: %w", id, err)
	}
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return g, nil
}

// ListGroups returns the groups a user belongs to, oldest first.
func (s *Store) ListGroups(userID string) ([]Group, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.name, g.invite_code, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY m.joined_at, g.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		var createdAt string
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &createdAt); err != nil {
			return nil, err
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) ListMembers(groupID string) ([]Member, error) {
	rows, err := s.db.Query(
		`SELECT group_id, user_id, display_name, joined_at FROM group_members
		 WHERE group_id = ? ORDER BY joined_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var joinedAt string
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.DisplayName, &joinedAt); err != nil {
			return nil, err
		}
		m.JoinedAt, _ = time.Parse(time.RFC3339, joinedAt)
		members = append(members, m)
	}
	return members, rows.Err()
}
