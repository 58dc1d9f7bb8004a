package geyser

import "fmt"

// TransactionStatusMeta is the execution result the host attaches to a
// transaction notification.
type TransactionStatusMeta struct {
	Err                  string              `json:"err,omitempty"`
	Fee                  uint64              `json:"fee"`
	PreBalances          []uint64            `json:"pre_balances"`
	PostBalances         []uint64            `json:"post_balances"`
	InnerInstructions    InnerInstructionSet `json:"inner_instructions"`
	LogMessages          []string            `json:"log_messages,omitempty"`
	ComputeUnitsConsumed *uint64             `json:"compute_units_consumed,omitempty"`
}

// ReplicaTransactionInfoVersions is one of the transaction event shapes the
// host may deliver. Read it through NormalizeTransaction.
type ReplicaTransactionInfoVersions interface {
	transactionInfoVersion() string
}

// ReplicaTransactionInfoV1 is the 0.0.1 transaction event.
type ReplicaTransactionInfoV1 struct {
	Signature   Signature
	IsVote      bool
	Transaction []byte // serialized sanitized transaction, opaque here
	Meta        TransactionStatusMeta
}

// ReplicaTransactionInfoV2 is the 0.0.2 transaction event; it adds the
// transaction's position within its block.
type ReplicaTransactionInfoV2 struct {
	Signature   Signature
	IsVote      bool
	Transaction []byte
	Meta        TransactionStatusMeta
	Index       int
}

func (*ReplicaTransactionInfoV1) transactionInfoVersion() string { return "0.0.1" }
func (*ReplicaTransactionInfoV2) transactionInfoVersion() string { return "0.0.2" }

// TransactionEvent is the version-independent form of a transaction
// notification. Index is -1 when the host did not report it.
type TransactionEvent struct {
	Version   string
	Signature Signature
	IsVote    bool
	Index     int
	Meta      *TransactionStatusMeta
}

// NormalizeTransaction folds any supported event version into a
// TransactionEvent. Meta points into the host's event and must not be retained
// past the callback.
func NormalizeTransaction(v ReplicaTransactionInfoVersions) (TransactionEvent, error) {
	switch t := v.(type) {
	case *ReplicaTransactionInfoV1:
		if t == nil {
			break
		}
		return TransactionEvent{
			Version:   t.transactionInfoVersion(),
			Signature: t.Signature,
			IsVote:    t.IsVote,
			Index:     -1,
			Meta:      &t.Meta,
		}, nil
	case *ReplicaTransactionInfoV2:
		if t == nil {
			break
		}
		return TransactionEvent{
			Version:   t.transactionInfoVersion(),
			Signature: t.Signature,
			IsVote:    t.IsVote,
			Index:     t.Index,
			Meta:      &t.Meta,
		}, nil
	}
	return TransactionEvent{}, fmt.Errorf("%w: %T", ErrUnsupportedVersion, v)
}

// ReplicaAccountInfoVersions is an account-write event.
type ReplicaAccountInfoVersions interface {
	accountInfoVersion() string
}

type ReplicaAccountInfoV3 struct {
	Pubkey       [32]byte
	Lamports     uint64
	Owner        [32]byte
	Executable   bool
	RentEpoch    uint64
	Data         []byte
	WriteVersion uint64
	Signature    *Signature // transaction that caused the write, if any
}

func (*ReplicaAccountInfoV3) accountInfoVersion() string { return "0.0.3" }

// ReplicaEntryInfoVersions is a PoH entry event.
type ReplicaEntryInfoVersions interface {
	entryInfoVersion() string
}

type ReplicaEntryInfoV2 struct {
	Slot                     uint64
	Index                    int
	NumHashes                uint64
	Hash                     [32]byte
	ExecutedTransactionCount uint64
	StartingTransactionIndex int
}

func (*ReplicaEntryInfoV2) entryInfoVersion() string { return "0.0.2" }

// ReplicaBlockInfoVersions is a block metadata event.
type ReplicaBlockInfoVersions interface {
	blockInfoVersion() string
}

type ReplicaBlockInfoV3 struct {
	ParentSlot               uint64
	ParentBlockhash          string
	Slot                     uint64
	Blockhash                string
	BlockTime                *int64
	BlockHeight              *uint64
	ExecutedTransactionCount uint64
	EntryCount               uint64
}

func (*ReplicaBlockInfoV3) blockInfoVersion() string { return "0.0.3" }
