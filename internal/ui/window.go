package ui

// visibleWindow returns the [start, end) bounds of the rows to draw and
// the adjusted scroll offset that keeps the selection inside the window.
// A NoSelection (-1) selected value leaves the scroll untouched.
func visibleWindow(selected, scroll, height, total int) (start, end, newScroll int) {
	if height <= 0 || total <= 0 {
		return 0, 0, 0
	}

	maxScroll := total - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}

	if selected >= 0 {
		if selected < scroll {
			scroll = selected
		} else if selected >= scroll+height {
			scroll = selected - height + 1
		}
	}

	end = scroll + height
	if end > total {
		end = total
	}
	return scroll, end, scroll
}
