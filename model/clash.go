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

// Upstream API shapes. Only the fields the harvester reads are mapped.

// ClanMember is one roster entry from the clan members endpoint.
type ClanMember struct {
	Tag      string `json:"tag"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Trophies int    `json:"trophies"`
}

// ClanMemberList wraps the paged roster response.
type ClanMemberList struct {
	Items []ClanMember `json:"items"`
}

// Player is the detailed player record from the upstream API.
type Player struct {
	Tag              string            `json:"tag"`
	Name             string            `json:"name"`
	Trophies         int               `json:"trophies"`
	AttackWins       int               `json:"attackWins"`
	Clan             *PlayerClan       `json:"clan,omitempty"`
	LegendStatistics *LegendStatistics `json:"legendStatistics,omitempty"`
}

type PlayerClan struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// LegendStatistics nests the season-scoped standings. PreviousSeason is only
// present once the upstream has closed a season for the player.
type LegendStatistics struct {
	LegendTrophies int           `json:"legendTrophies"`
	PreviousSeason *SeasonResult `json:"previousSeason,omitempty"`
	CurrentSeason  *SeasonResult `json:"currentSeason,omitempty"`
}

// SeasonResult carries the upstream-assigned season identifier, e.g. "2026-08".
type SeasonResult struct {
	ID       string `json:"id"`
	Rank     *int   `json:"rank,omitempty"`
	Trophies int    `json:"trophies"`
}

// HasPreviousSeason reports whether the player carries a usable season block.
func (p *Player) HasPreviousSeason() bool {
	return p.LegendStatistics != nil &&
		p.LegendStatistics.PreviousSeason != nil &&
		p.LegendStatistics.PreviousSeason.ID != ""
}
