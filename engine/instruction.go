package engine

import "strings"

// Instruction is one turn's action line decoded into ordered orders.
type Instruction struct {
	Raw      string            // the line as received or emitted
	Orders   []Order           // clauses in resolution order
	Estimate EstimatedPosition // localization result attached after analysis
	Skipped  []error           // clauses that could not be decoded
}

// ParseInstruction decodes an action line clause by clause. Malformed or
// unsupported clauses are recorded in Skipped and never abort the decode.
// "NA" and the empty line decode to an instruction without orders.
func ParseInstruction(line string) Instruction {
	line = strings.TrimSpace(line)
	ins := Instruction{Raw: line, Estimate: NoEstimate}
	if line == "" || line == "NA" {
		return ins
	}
	for _, clause := range strings.Split(line, "|") {
		if strings.TrimSpace(clause) == "" {
			continue
		}
		o, err := ParseOrder(clause)
		if err != nil {
			ins.Skipped = append(ins.Skipped, err)
			continue
		}
		ins.Orders = append(ins.Orders, o)
	}
	return ins
}

// String renders the orders joined with '|'.
func (ins Instruction) String() string {
	parts := make([]string, 0, len(ins.Orders))
	for _, o := range ins.Orders {
		parts = append(parts, FormatOrder(o))
	}
	return strings.Join(parts, "|")
}

// Move returns the first MOVE order.
func (ins Instruction) Move() (MoveOrder, bool) {
	for _, o := range ins.Orders {
		if m, ok := o.(MoveOrder); ok {
			return m, true
		}
	}
	return MoveOrder{}, false
}

// Torpedo returns the first TORPEDO order.
func (ins Instruction) Torpedo() (TorpedoOrder, bool) {
	for _, o := range ins.Orders {
		if t, ok := o.(TorpedoOrder); ok {
			return t, true
		}
	}
	return TorpedoOrder{}, false
}

// Sonar returns the first SONAR order.
func (ins Instruction) Sonar() (SonarOrder, bool) {
	for _, o := range ins.Orders {
		if s, ok := o.(SonarOrder); ok {
			return s, true
		}
	}
	return SonarOrder{}, false
}

// Silence returns the first SILENCE order.
func (ins Instruction) Silence() (SilenceOrder, bool) {
	for _, o := range ins.Orders {
		if s, ok := o.(SilenceOrder); ok {
			return s, true
		}
	}
	return SilenceOrder{}, false
}

// Surface returns the first SURFACE order.
func (ins Instruction) Surface() (SurfaceOrder, bool) {
	for _, o := range ins.Orders {
		if s, ok := o.(SurfaceOrder); ok {
			return s, true
		}
	}
	return SurfaceOrder{}, false
}

// SurfaceCount returns how many SURFACE orders the line holds (1 HP each).
func (ins Instruction) SurfaceCount() int {
	n := 0
	for _, o := range ins.Orders {
		if _, ok := o.(SurfaceOrder); ok {
			n++
		}
	}
	return n
}

// clone copies the order and error slices so callers cannot alias history.
func (ins Instruction) clone() Instruction {
	out := ins
	out.Orders = append([]Order(nil), ins.Orders...)
	out.Skipped = append([]error(nil), ins.Skipped...)
	return out
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// History is a player's append-only list of instructions. Entries are
// returned by value; the only permitted mutation of a stored entry is
// BackfillEstimate on the most recent one.
type History struct {
	entries []Instruction
}

// Append stores a copy of ins as the most recent entry.
func (h *History) Append(ins Instruction) {
	h.entries = append(h.entries, ins.clone())
}

// Len returns the number of stored instructions.
func (h *History) Len() int { return len(h.entries) }

// Current returns a copy of the most recent instruction.
func (h *History) Current() (Instruction, bool) {
	if len(h.entries) == 0 {
		return Instruction{Estimate: NoEstimate}, false
	}
	return h.entries[len(h.entries)-1].clone(), true
}

// Previous returns a copy of the instruction before the most recent one.
func (h *History) Previous() (Instruction, bool) {
	if len(h.entries) < 2 {
		return Instruction{Estimate: NoEstimate}, false
	}
	return h.entries[len(h.entries)-2].clone(), true
}

// At returns a copy of entry i (0 = oldest).
func (h *History) At(i int) (Instruction, bool) {
	if i < 0 || i >= len(h.entries) {
		return Instruction{Estimate: NoEstimate}, false
	}
	return h.entries[i].clone(), true
}

// BackfillEstimate sets the estimate of the most recent entry.
func (h *History) BackfillEstimate(e EstimatedPosition) bool {
	if len(h.entries) == 0 {
		return false
	}
	h.entries[len(h.entries)-1].Estimate = e
	return true
}
