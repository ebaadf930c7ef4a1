package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/daughters-of-aether/arena-client/pkg/environment"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/stake"
	"github.com/daughters-of-aether/arena-client/pkg/wallet"
)

const airdropConfirmationTimeout = 60 * time.Second

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the local wallet",
}

var walletNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new wallet keypair",
	Args:  cobra.NoArgs,
	RunE:  runWalletNew,
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the wallet address and balance",
	Args:  cobra.NoArgs,
	RunE:  runWalletShow,
}

var walletAirdropCmd = &cobra.Command{
	Use:   "airdrop <sol>",
	Short: "Request a devnet airdrop",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletAirdrop,
}

func init() {
	walletCmd.AddCommand(walletNewCmd, walletShowCmd, walletAirdropCmd)
	rootCmd.AddCommand(walletCmd)
}

func runWalletNew(cmd *cobra.Command, args []string) error {
	path, err := getKeypairPath()
	if err != nil {
		return reportError(err)
	}

	w, err := wallet.Create(path)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(successStyle.Render("✔ New wallet created"))
	fmt.Println(field("Address", w.PublicKey()))
	fmt.Println(field("Keypair", path))
	return nil
}

func runWalletShow(cmd *cobra.Command, args []string) error {
	ctx := rootContext

	w, err := loadWallet()
	if err != nil {
		return reportError(err)
	}

	fmt.Println(field("Address", w.PublicKey()))
	fmt.Println(field("Network", env.NetworkLabel))
	fmt.Println(field("Explorer", env.AccountURL(w.PublicKey())))

	balance, err := w.Balance(ctx)
	if err != nil {
		fmt.Println(field("Balance", warningStyle.Render("unavailable: "+err.Error())))
		return nil
	}
	fmt.Println(field("Balance", stake.FormatLamports(balance)+" SOL"))
	return nil
}

func runWalletAirdrop(cmd *cobra.Command, args []string) error {
	ctx := rootContext

	if !env.IsDevelopment() {
		return reportError(errors.Errorf("airdrops are only available on %s", environment.DevnetNetworkLabel))
	}

	lamports, err := stake.ParseSol(args[0])
	if err != nil {
		return reportError(err)
	}

	w, err := loadWallet()
	if err != nil {
		return reportError(err)
	}

	client := getRPCClient()
	sig, err := client.RequestAirdrop(ctx, w.Key(), lamports, solana.CommitmentConfirmed)
	if err != nil {
		return reportError(err)
	}
	fmt.Println(field("Signature", sig.String()))

	confirmCtx, cancel := context.WithTimeout(ctx, airdropConfirmationTimeout)
	defer cancel()
	if err := client.ConfirmTransaction(confirmCtx, sig, solana.CommitmentConfirmed); err != nil {
		return reportError(err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✔ Airdropped %s SOL", stake.FormatLamports(lamports))))
	return nil
}
