/*
Copyright 2025 Legendtrack Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LivePlayer is the mutable per-player tracking row. Trophies and AttackWins
// drift under the live monitoring feature between season boundaries and are
// pulled back to the reset baseline by every harvest.
type LivePlayer struct {
	PlayerTag  string    `json:"player_tag"`
	PlayerName string    `json:"player_name"`
	Trophies   int       `json:"trophies"`
	AttackWins int       `json:"attack_wins"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PlayerSnapshot is the cached mirror of a LivePlayer row. Staleness up to the
// configured TTL is acceptable.
type PlayerSnapshot struct {
	PlayerTag  string    `json:"player_tag"`
	PlayerName string    `json:"player_name"`
	Trophies   int       `json:"trophies"`
	AttackWins int       `json:"attack_wins"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clan is a registered clan whose roster is enumerated during harvests.
type Clan struct {
	ClanTag   string    `json:"clan_tag"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotKeyPrefix prefixes cached snapshot keys.
const SnapshotKeyPrefix = "player:live:"

func SnapshotKey(playerTag string) string {
	return SnapshotKeyPrefix + playerTag
}

func (p *LivePlayer) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		PlayerTag:  p.PlayerTag,
		PlayerName: p.PlayerName,
		Trophies:   p.Trophies,
		AttackWins: p.AttackWins,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (c *Clan) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClanTag, validation.Required, validation.By(validTag)),
		validation.Field(&c.Name, validation.Length(0, 50)),
	)
}

func validTag(value interface{}) error {
	tag, ok := value.(string)
	if !ok || !strings.HasPrefix(tag, "#") || len(tag) < 2 {
		return validation.NewError("validation_tag", "tag must start with '#'")
	}
	return nil
}
