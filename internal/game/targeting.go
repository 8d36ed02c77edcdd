package game

import "sort"

// rankedPick returns the candidate with the lowest score, ties broken by
// distance to the unit and then by handle.
func (u *Unit) rankedPick(cands []*Structure, score func(*Structure) float64) *Structure {
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := score(cands[i]), score(cands[j])
		if si != sj {
			return si < sj
		}
		di, dj := u.distanceTo(cands[i].X, cands[i].Y), u.distanceTo(cands[j].X, cands[j].Y)
		if di != dj {
			return di < dj
		}
		return cands[i].ID < cands[j].ID
	})
	return cands[0]
}

func threatScoreOf(s *Structure) float64 { return s.threatScore() }
func hpScoreOf(s *Structure) float64     { return s.HP }

// liveAttackers returns recorded attackers that are alive and not known to
// be unreachable.
func (u *Unit) liveAttackers(r *Roster) []*Structure {
	var out []*Structure
	for _, id := range u.attackers {
		if u.isUnreachable(id) {
			continue
		}
		if s := r.Live(id); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (u *Unit) sighted(list []*Structure) []*Structure {
	var out []*Structure
	for _, s := range list {
		if u.inSight(s) && !u.isUnreachable(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

// primaryAttacker is the attacker the unit would retaliate against.
func (u *Unit) primaryAttacker(r *Roster) *Structure {
	return u.rankedPick(u.liveAttackers(r), threatScoreOf)
}

// bestTarget applies the priority rule: recorded attackers first, then
// attack-capable structures in sight by hp × damage, then passive walls in
// sight by hp. With sightOnly the attacker tier is limited to sight too.
func (u *Unit) bestTarget(r *Roster, sightOnly bool) *Structure {
	attackers := u.liveAttackers(r)
	if sightOnly {
		attackers = u.sighted(attackers)
	}
	if s := u.rankedPick(attackers, threatScoreOf); s != nil {
		return s
	}
	if s := u.rankedPick(u.sighted(r.Defenders()), threatScoreOf); s != nil {
		return s
	}
	return u.rankedPick(u.sighted(r.PassiveWalls()), hpScoreOf)
}
