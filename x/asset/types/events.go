package types

// Asset module event types
const (
	EventTypeTransfer = "transfer"
	EventTypeApproval = "approval"
	EventTypeMint     = "mint"
)

// Asset module event attribute keys
const (
	AttributeKeyDenom     = "denom"
	AttributeKeySender    = "sender"
	AttributeKeyRecipient = "recipient"
	AttributeKeyOwner     = "owner"
	AttributeKeySpender   = "spender"
	AttributeKeyAmount    = "amount"
)
