package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"feira/internal/cart"
	"feira/internal/core"
)

var registerCmd = &cobra.Command{
	Use:   "register EMAIL PASSWORD",
	Short: "Create an account and store the session token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.authenticate("/auth/register", args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("registered and logged in")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login EMAIL PASSWORD",
	Short: "Log in and store the session token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := client.authenticate("/auth/login", args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Discard any staged items and begin a fresh trip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCart()
		if err != nil {
			return err
		}
		if err := c.Start(); err != nil {
			return err
		}
		fmt.Println("new trip started")
		return nil
	},
}

var addEAN string

var addCmd = &cobra.Command{
	Use:   "add NAME PRICE [QUANTITY]",
	Short: "Stage an item (works offline)",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cents, err := core.ParseDecimalToCents(args[1])
		if err != nil {
			return fmt.Errorf("invalid price %q", args[1])
		}
		qty := int64(1)
		if len(args) == 3 {
			qty, err = strconv.ParseInt(args[2], 10, 64)
			if err != nil || qty < 1 {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
		}

		c, err := openCart()
		if err != nil {
			return err
		}
		item := core.StagedItem{
			EAN:      addEAN,
			Name:     args[0],
			Price:    core.Money{Cents: cents},
			Quantity: qty,
		}
		if err := c.AddItem(item); err != nil {
			return err
		}
		fmt.Printf("staged %s x%d @ %s\n", item.Name, item.Quantity, item.Price)
		return nil
	},
}

var (
	editName  string
	editPrice string
	editQty   string
)

var editCmd = &cobra.Command{
	Use:   "edit INDEX",
	Short: "Edit a staged item in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		c, err := openCart()
		if err != nil {
			return err
		}
		err = c.UpdateItem(index, cart.Edit{
			Name:     editName,
			Price:    editPrice,
			Quantity: editQty,
		})
		if err != nil {
			return err
		}
		fmt.Printf("updated item %d\n", index)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove INDEX",
	Short: "Remove a staged item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		c, err := openCart()
		if err != nil {
			return err
		}
		if err := c.RemoveItem(index); err != nil {
			return err
		}
		fmt.Printf("removed item %d\n", index)
		return nil
	},
}

var storeCmd = &cobra.Command{
	Use:   "store NAME",
	Short: "Set the store for the current trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCart()
		if err != nil {
			return err
		}
		if err := c.SetStore(args[0]); err != nil {
			return err
		}
		fmt.Printf("store set to %s\n", args[0])
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the staged trip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCart()
		if err != nil {
			return err
		}
		items := c.Items()
		if len(items) == 0 {
			fmt.Println("cart is empty")
			return nil
		}
		store := c.StoreName()
		if store == "" {
			store = "(no store set)"
		}
		fmt.Printf("trip at %s\n", store)
		for i, item := range items {
			label := item.Name
			if item.EAN != "" {
				label = fmt.Sprintf("%s [%s]", label, item.EAN)
			}
			fmt.Printf("  %d. %s x%d @ %s\n", i, label, item.Quantity, item.Price)
		}
		fmt.Printf("total: %s\n", c.Total())
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Commit the staged trip to the server and clear the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCart()
		if err != nil {
			return err
		}
		snapshot, err := c.Checkout()
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		trip, err := client.commitTrip(snapshot)
		if err != nil {
			// commit failed: the draft stays intact for a retry
			return err
		}
		if err := c.Discard(); err != nil {
			return fmt.Errorf("trip #%d saved but local cart not cleared: %w", trip.ID, err)
		}

		fmt.Printf("trip #%d saved: %d items at %s, total %s\n",
			trip.ID, len(trip.Items), trip.Store, trip.Total)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addEAN, "ean", "", "barcode of the item, if scanned")
	editCmd.Flags().StringVar(&editName, "name", "", "new name")
	editCmd.Flags().StringVar(&editPrice, "price", "", "new price, e.g. 4.50")
	editCmd.Flags().StringVar(&editQty, "quantity", "", "new quantity")
}
