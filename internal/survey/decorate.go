package survey

// HistoryItem is a history record with its resolved status. ReplyDate is set
// only for answered records.
type HistoryItem struct {
	Record    RawHistoryRecord
	Status    Status
	ReplyDate *string
}

// Decorate resolves every record, keeping order and length.
func Decorate(records []RawHistoryRecord) []HistoryItem {
	items := make([]HistoryItem, len(records))
	for i, r := range records {
		items[i] = DecorateRecord(r)
	}
	return items
}

func DecorateRecord(r RawHistoryRecord) HistoryItem {
	item := HistoryItem{
		Record: r,
		Status: Resolve(r),
	}
	if item.Status.IsAnswered() {
		item.ReplyDate = replyDate(r.Reply)
	}
	return item
}

func replyDate(reply *Reply) *string {
	if reply == nil {
		return nil
	}
	if reply.ReplyUpdated.NonEmpty() {
		return reply.ReplyUpdated.Ptr()
	}
	if reply.ReplyCreated.NonEmpty() {
		return reply.ReplyCreated.Ptr()
	}
	return nil
}
