package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AnshRaj112/contactbook-backend/pkg/client"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"c"},
		Short:   "Add, list, delete and watch contacts",
	}
	cmd.AddCommand(a.addCmd(), a.listCmd(), a.deleteCmd(), a.watchCmd())
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var in validation.ContactInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a new contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if hint := client.PhoneHint(in.Phone); hint.Valid && !validation.ValidatePhone(in.Phone).Valid {
				fmt.Fprintln(cmd.ErrOrStderr(), "Hint: enter the phone as exactly 10 digits with no spaces or country code.")
			}
			form := client.NewContactForm(a.client, nil)
			contact, err := form.Submit(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s).\n", contact.Name, contact.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "contact name")
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "10-digit phone number")
	cmd.Flags().StringVar(&in.Message, "message", "", "optional note")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var field, order string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your contacts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			sort, err := client.ParseSort(field, order)
			if err != nil {
				return err
			}
			list := client.NewContactList(a.client)
			if err := list.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printContacts(cmd.OutOrStdout(), list.Sorted(sort))
		},
	}
	cmd.Flags().StringVar(&field, "sort", "", "sort by name or date (default date)")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc (default desc for date, asc for name)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a contact",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.client.DeleteContact(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Contact deleted successfully.")
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	var field, order string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the list again whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			sort, err := client.ParseSort(field, order)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			list := client.NewContactList(a.client)
			if err := list.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := printContacts(out, list.Sorted(sort)); err != nil {
				return err
			}
			return list.Follow(cmd.Context(), func(contacts []client.Contact) {
				fmt.Fprintln(out)
				_ = printContacts(out, sort.Apply(contacts))
			})
		},
	}
	cmd.Flags().StringVar(&field, "sort", "", "sort by name or date")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc")
	return cmd
}

func printContacts(out io.Writer, contacts []client.Contact) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(out, "No contacts yet.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tADDED\tMESSAGE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Email, c.Phone, c.CreatedAt.Local().Format("Jan 2, 2006"), c.Message)
	}
	return tw.Flush()
}
