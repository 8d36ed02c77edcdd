package game

// Vitals is the shield and hit point pool shared by units and the caster.
type Vitals struct {
	HP     float64
	MaxHP  float64
	Shield float64
}

// IsAlive reports whether hit points remain.
func (v *Vitals) IsAlive() bool { return v.HP > 0 }

// TakeDamage consumes the shield first, then hit points. It returns the total
// absorbed by both pools.
func (v *Vitals) TakeDamage(amount float64) float64 {
	if amount <= 0 || !v.IsAlive() {
		return 0
	}
	absorbed := 0.0
	if v.Shield > 0 {
		blocked := min(v.Shield, amount)
		v.Shield -= blocked
		amount -= blocked
		absorbed += blocked
	}
	if amount > 0 {
		hit := min(v.HP, amount)
		v.HP -= hit
		absorbed += hit
	}
	return absorbed
}

// AddShield grows the shield pool.
func (v *Vitals) AddShield(amount float64) {
	if amount > 0 {
		v.Shield += amount
	}
}
