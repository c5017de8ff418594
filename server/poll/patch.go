package poll

// Patch is a partial update of a poll. Nil fields are left untouched,
// a non-nil empty Votes slice clears all votes.
type Patch struct {
	Options []*Option
	Votes   []Vote
	Closed  *bool
	PostID  *string
}

// Apply writes all set fields of the patch into the given poll.
func (pt Patch) Apply(p *Poll) {
	if pt.Options != nil {
		p.Options = pt.Options
	}
	if pt.Votes != nil {
		p.Votes = pt.Votes
	}
	if pt.Closed != nil {
		p.Closed = *pt.Closed
	}
	if pt.PostID != nil {
		p.PostID = *pt.PostID
	}
}

// IsEmpty returns true if the patch would not change anything.
func (pt Patch) IsEmpty() bool {
	return pt.Options == nil && pt.Votes == nil && pt.Closed == nil && pt.PostID == nil
}
