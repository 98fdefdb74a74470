package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/mdejong/budgeteer/internal/model"
)

// ParseOFX reads an OFX/QFX statement into transactions. Both bank and
// credit card statement blocks are processed.
func ParseOFX(reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX input: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX input: %w", err)
	}

	var transactions []model.Transaction

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		accountID := string(stmt.BankAcctFrom.AcctID)
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convertOFXTransaction(ofxTxn, accountID))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		accountID := string(stmt.CCAcctFrom.AcctID)
		for _, ofxTxn := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convertOFXTransaction(ofxTxn, accountID))
		}
	}

	slog.Info("Parsed OFX statement", "transactions", len(transactions))

	return transactions, nil
}

// preprocessOFX trims leading junk before the header so SGML-style exports
// from older banks parse.
func preprocessOFX(content string) string {
	return strings.TrimLeft(content, " \t\r\n")
}

func convertOFXTransaction(ofxTxn ofxgo.Transaction, accountID string) model.Transaction {
	amount, _ := ofxTxn.TrnAmt.Float64()

	description := string(ofxTxn.Name)
	if ofxTxn.Memo != "" {
		description = strings.TrimSpace(description + " " + string(ofxTxn.Memo))
	}

	counterparty := ""
	if ofxTxn.Payee != nil && ofxTxn.Payee.Name != "" {
		counterparty = string(ofxTxn.Payee.Name)
	}

	txn := model.Transaction{
		ID:           string(ofxTxn.FiTID),
		Date:         ofxTxn.DtPosted.Time,
		Description:  description,
		Counterparty: counterparty,
		Amount:       amount, // OFX signs debits negative already
		AccountID:    accountID,
	}
	txn.Hash = txn.GenerateHash()
	if txn.ID == "" {
		txn.ID = txn.Hash[:16]
	}

	return txn
}
