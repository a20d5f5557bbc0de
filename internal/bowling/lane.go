package bowling

// lane is the flattened roll sequence used for bonus lookahead. Rolls are
// laid out in frame order up to the first roll that has not been thrown.
type lane struct {
	rolls    []int
	starts   [FrameCount]int
	thrown   [FrameCount]int
	complete [FrameCount]bool
}

// layOut flattens valid, sanitized frames into a lane.
func layOut(frames Frames) lane {
	var l lane
	open := true
	for i, frame := range frames {
		l.starts[i] = len(l.rolls)
		l.complete[i] = FrameComplete(frames, i)
		if !open {
			continue
		}
		for r := 0; r < MaxRolls(i); r++ {
			pins, present, _ := pinCount(frame.Roll(r))
			if !present {
				break
			}
			l.rolls = append(l.rolls, pins)
			l.thrown[i]++
			if i != finalFrame && pins == MaxPins {
				break
			}
		}
		if !l.complete[i] {
			open = false
		}
	}
	return l
}

// frameScore returns the points earned by the frame at index, bonus included,
// and false when the frame or its bonus rolls are not known yet.
func (l lane) frameScore(index int) (int, bool) {
	start, thrown := l.starts[index], l.thrown[index]
	if index == finalFrame {
		if !l.complete[index] {
			return 0, false
		}
		total := 0
		for _, pins := range l.rolls[start : start+thrown] {
			total += pins
		}
		return total, true
	}

	if thrown == 0 {
		return 0, false
	}
	first := l.rolls[start]
	if first == MaxPins {
		return l.withBonus(MaxPins, start+1, 2)
	}
	if thrown < 2 {
		return 0, false
	}
	pins := first + l.rolls[start+1]
	if pins == MaxPins {
		return l.withBonus(MaxPins, start+2, 1)
	}
	return pins, true
}

func (l lane) withBonus(base, from, count int) (int, bool) {
	if from+count > len(l.rolls) {
		return 0, false
	}
	for _, pins := range l.rolls[from : from+count] {
		base += pins
	}
	return base, true
}
