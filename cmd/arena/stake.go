package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daughters-of-aether/arena-client/pkg/pointer"
	"github.com/daughters-of-aether/arena-client/pkg/stake"
)

var balanceFlag string

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Check stakes against the arena limits",
}

var stakeValidateCmd = &cobra.Command{
	Use:   "validate <sol>",
	Short: "Validate a stake amount",
	Args:  cobra.ExactArgs(1),
	RunE:  runStakeValidate,
}

var stakeSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest stakes for the wallet balance",
	Args:  cobra.NoArgs,
	RunE:  runStakeSuggest,
}

func init() {
	stakeCmd.PersistentFlags().StringVar(&balanceFlag, "balance", "", "balance in SOL to check against (default: the wallet balance)")

	stakeCmd.AddCommand(stakeValidateCmd, stakeSuggestCmd)
	rootCmd.AddCommand(stakeCmd)
}

func runStakeValidate(cmd *cobra.Command, args []string) error {
	ctx := rootContext

	stakeLamports, err := stake.ParseSol(args[0])
	if err != nil {
		return reportError(err)
	}

	balance, err := getBalance(ctx)
	if err != nil {
		return reportError(err)
	}
	if balance == nil {
		fmt.Println(promptStyle.Render("Balance unknown, skipping balance checks."))
	}

	validator := stake.NewValidator(stake.WithEnvConfigs())
	validation := validator.Validate(ctx, int64(stakeLamports), balance)
	printValidation(validation)

	if err := validation.Err(); err != nil {
		return err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✔ %s SOL is a valid stake", stake.FormatLamports(stakeLamports))))
	return nil
}

func runStakeSuggest(cmd *cobra.Command, args []string) error {
	ctx := rootContext

	validator := stake.NewValidator(stake.WithEnvConfigs())
	limits := validator.Limits(ctx)

	fmt.Println(field("Minimum", stake.FormatLamports(limits.MinLamports)+" SOL"))
	fmt.Println(field("Maximum", stake.FormatLamports(limits.MaxLamports)+" SOL"))
	fmt.Println(field("Recommended", stake.FormatLamports(limits.RecommendedLamports)+" SOL"))
	fmt.Println()

	balance, err := getBalance(ctx)
	if err != nil {
		return reportError(err)
	}
	if balance == nil {
		fmt.Println(promptStyle.Render("Balance unknown, pass --balance to get suggestions."))
		return nil
	}

	suggestions := validator.Suggestions(ctx, *balance)
	if len(suggestions) == 0 {
		fmt.Println(warningStyle.Render("Balance is below the minimum stake."))
		return nil
	}
	for _, s := range suggestions {
		fmt.Println(field(s.Label, fmt.Sprintf("%s SOL  %s", stake.FormatLamports(s.ValueLamports), promptStyle.Render(s.Description))))
	}
	return nil
}

// getBalance returns --balance when set, otherwise the wallet balance. A
// missing wallet or unreachable RPC gives an unknown (nil) balance.
func getBalance(ctx context.Context) (*uint64, error) {
	if balanceFlag != "" {
		lamports, err := stake.ParseSol(balanceFlag)
		if err != nil {
			return nil, err
		}
		return pointer.Uint64(lamports), nil
	}

	w, err := loadWallet()
	if err != nil {
		return nil, nil
	}
	lamports, err := w.Balance(ctx)
	return pointer.Uint64IfValid(err == nil, lamports), nil
}
