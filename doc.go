// Package efc drives the embedded flash controller (EFC) of the FDV32S305
// microcontroller: clock-dependent timing setup, single program, page and chip
// erase, EEPROM-style word writes and controller interrupts.
//
// Register accesses go through a [Bus]. [MMIO] is used when running on the
// target itself, [Bridge] when the controller is reached over a SPI or UART
// debug bridge, and the sim package provides an in-memory controller.
//
// # References:
//
// FDV32S305
//   - [FDV32S305-DS]: FDV32S305 datasheet, chapter "Embedded Flash Controller" (vendor distribution only)
//   - [FDV32S305-UM]: FDV32S305 user manual, EFC register map and timing tables (vendor distribution only)
//
// FTDI (https://ftdichip.com/document/application-notes/)
//   - [FTDI-AN_114]: Interfacing FT2232H Hi-Speed Devices To SPI Bus (https://ftdichip.com/wp-content/uploads/2020/08/AN_114_FTDI_Hi_Speed_USB_To_SPI_Example.pdf)
//   - [FTDI-AN_135]: FTDI MPSSE Basics (https://ftdichip.com/wp-content/uploads/2020/08/AN_135_MPSSE_Basics.pdf)
package efc
